// Package tabular loads CSV files and database tables into an
// embedded SQL engine and answers filter/aggregate queries against
// them. All query work is passed through to SQLite; this package only
// translates tool parameters into SQL.
package tabular

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/stackmill/docent/internal/domain"

	_ "modernc.org/sqlite"
)

// Loader owns the in-memory SQLite database holding every loaded
// table. Safe for concurrent use.
type Loader struct {
	mu     sync.RWMutex
	db     *sql.DB
	tables map[string][]column
}

type column struct {
	name string
	typ  domain.ColumnType
}

// NewLoader opens the in-memory database.
func NewLoader() (*Loader, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// A single connection keeps every table in the same memory database.
	db.SetMaxOpenConns(1)

	return &Loader{
		db:     db,
		tables: make(map[string][]column),
	}, nil
}

// Close releases the underlying database.
func (l *Loader) Close() error {
	return l.db.Close()
}

// Tables returns the loaded table names, sorted.
func (l *Loader) Tables() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.tables))
	for name := range l.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a table is loaded.
func (l *Loader) Has(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.tables[name]
	return ok
}

// LoadCSV loads a CSV file into a table. An empty name defaults to
// the filename without extension. Reloading a name replaces the table.
func (l *Loader) LoadCSV(ctx context.Context, path, name string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to parse csv file: %w", err)
	}
	if len(records) < 1 || len(records[0]) == 0 {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "csv file has no header row")
	}

	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	header := records[0]
	rows := records[1:]
	cols := inferColumns(header, rows)

	if err := l.createTable(ctx, name, cols, rows); err != nil {
		return "", err
	}
	return name, nil
}

// createTable (re)creates a table and bulk-inserts the rows.
func (l *Loader) createTable(ctx context.Context, name string, cols []column, rows [][]string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(name))); err != nil {
		return fmt.Errorf("failed to drop table %q: %w", name, err)
	}

	defs := make([]string, len(cols))
	for i, col := range cols {
		defs[i] = fmt.Sprintf("%s %s", quoteIdent(col.name), sqliteType(col.typ))
	}
	createStmt := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
	if _, err := l.db.ExecContext(ctx, createStmt); err != nil {
		return fmt.Errorf("failed to create table %q: %w", name, err)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin insert transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimRight(strings.Repeat("?,", len(cols)), ",")
	insertStmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(name), placeholders))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer insertStmt.Close()

	for _, row := range rows {
		args := make([]any, len(cols))
		for i := range cols {
			var raw string
			if i < len(row) {
				raw = row[i]
			}
			args[i] = convertValue(raw, cols[i].typ)
		}
		if _, err := insertStmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row into %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit inserts: %w", err)
	}

	l.tables[name] = cols
	return nil
}

func (l *Loader) columns(name string) ([]column, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	cols, ok := l.tables[name]
	if !ok {
		return nil, domain.ErrTableNotFound
	}
	return cols, nil
}

// inferColumns assigns each column the narrowest type that fits every
// non-empty value: integer, then real, then text.
func inferColumns(header []string, rows [][]string) []column {
	cols := make([]column, len(header))
	for i, name := range header {
		cols[i] = column{name: strings.TrimSpace(name), typ: inferColumnType(rows, i)}
	}
	return cols
}

func inferColumnType(rows [][]string, col int) domain.ColumnType {
	typ := domain.ColumnTypeInteger
	seen := false

	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[col])
		if value == "" {
			continue
		}
		seen = true

		if typ == domain.ColumnTypeInteger {
			if _, err := strconv.ParseInt(value, 10, 64); err == nil {
				continue
			}
			typ = domain.ColumnTypeReal
		}
		if typ == domain.ColumnTypeReal {
			if _, err := strconv.ParseFloat(value, 64); err == nil {
				continue
			}
			typ = domain.ColumnTypeText
		}
		if typ == domain.ColumnTypeText {
			break
		}
	}

	if !seen {
		return domain.ColumnTypeText
	}
	return typ
}

// convertValue maps a raw CSV cell to a driver value. Empty cells
// become NULL.
func convertValue(raw string, typ domain.ColumnType) any {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}

	switch typ {
	case domain.ColumnTypeInteger:
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	case domain.ColumnTypeReal:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return value
}

func sqliteType(typ domain.ColumnType) string {
	switch typ {
	case domain.ColumnTypeInteger:
		return "INTEGER"
	case domain.ColumnTypeReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// quoteIdent quotes an SQL identifier. Loaded table names may contain
// dots (db.table), so everything goes through here.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
