package tabular

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stackmill/docent/internal/domain"
)

const defaultTableRowLimit = 1000

// PostgresSource copies tables from a Postgres database into the
// loader so they can be queried alongside CSV tables.
type PostgresSource struct {
	pool   *pgxpool.Pool
	dbName string
}

// NewPostgresSource wraps an existing connection pool. The database
// name prefixes every loaded table, e.g. "sales.orders".
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{
		pool:   pool,
		dbName: pool.Config().ConnConfig.Database,
	}
}

// ListTables returns the table names in the public schema.
func (s *PostgresSource) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		 ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// LoadTable copies up to limit rows of a Postgres table into the
// loader and returns the qualified name it was loaded under.
func (s *PostgresSource) LoadTable(ctx context.Context, loader *Loader, table string, limit int) (string, error) {
	if strings.TrimSpace(table) == "" {
		return "", domain.ErrMissingRequiredField
	}
	if limit <= 0 {
		limit = defaultTableRowLimit
	}

	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", quotePgIdent(table), limit)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to read table %q: %w", table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.Name
	}

	var records [][]string
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return "", fmt.Errorf("failed to read row from %q: %w", table, err)
		}
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = formatPgValue(v)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to iterate table %q: %w", table, err)
	}

	name := s.dbName + "." + table
	cols := inferColumns(header, records)
	if err := loader.createTable(ctx, name, cols, records); err != nil {
		return "", err
	}
	return name, nil
}

// formatPgValue renders a pgx value as text so column types can be
// re-inferred uniformly with CSV input.
func formatPgValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case time.Time:
		return value.Format(time.RFC3339)
	case []byte:
		return string(value)
	case pgtype.Numeric:
		if !value.Valid {
			return ""
		}
		f, err := value.Float64Value()
		if err != nil || !f.Valid {
			return ""
		}
		return fmt.Sprintf("%v", f.Float64)
	case *big.Int:
		return value.String()
	default:
		return fmt.Sprintf("%v", value)
	}
}

func quotePgIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = `"` + strings.ReplaceAll(part, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}
