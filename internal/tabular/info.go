package tabular

import (
	"context"
	"fmt"
	"strings"

	"github.com/stackmill/docent/internal/domain"
)

const sampleRowCount = 5

// Info returns schema, size and preview details for a loaded table.
func (l *Loader) Info(ctx context.Context, name string) (*domain.TableInfo, error) {
	cols, err := l.columns(name)
	if err != nil {
		return nil, err
	}

	info := &domain.TableInfo{
		Name:       name,
		Columns:    make([]string, len(cols)),
		Types:      make(map[string]domain.ColumnType, len(cols)),
		NullCounts: make(map[string]int, len(cols)),
	}
	for i, col := range cols {
		info.Columns[i] = col.name
		info.Types[col.name] = col.typ
	}

	if err := l.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(name))).Scan(&info.RowCount); err != nil {
		return nil, fmt.Errorf("failed to count rows of %q: %w", name, err)
	}

	sample, _, err := l.scanRows(ctx,
		fmt.Sprintf("SELECT * FROM %s LIMIT %d", quoteIdent(name), sampleRowCount))
	if err != nil {
		return nil, err
	}
	info.SampleRows = sample

	if err := l.fillNullCounts(ctx, name, cols, info); err != nil {
		return nil, err
	}
	if err := l.fillStats(ctx, name, cols, info); err != nil {
		return nil, err
	}

	return info, nil
}

func (l *Loader) fillNullCounts(ctx context.Context, name string, cols []column, info *domain.TableInfo) error {
	selects := make([]string, len(cols))
	for i, col := range cols {
		selects[i] = fmt.Sprintf("SUM(CASE WHEN %s IS NULL THEN 1 ELSE 0 END)", quoteIdent(col.name))
	}

	row := l.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s", strings.Join(selects, ", "), quoteIdent(name)))

	counts := make([]*int, len(cols))
	dest := make([]any, len(cols))
	for i := range counts {
		dest[i] = &counts[i]
	}
	if err := row.Scan(dest...); err != nil {
		return fmt.Errorf("failed to count nulls of %q: %w", name, err)
	}

	for i, col := range cols {
		if counts[i] != nil {
			info.NullCounts[col.name] = *counts[i]
		}
	}
	return nil
}

func (l *Loader) fillStats(ctx context.Context, name string, cols []column, info *domain.TableInfo) error {
	var numeric []column
	for _, col := range cols {
		if col.typ.Numeric() {
			numeric = append(numeric, col)
		}
	}
	if len(numeric) == 0 {
		return nil
	}

	var selects []string
	for _, col := range numeric {
		q := quoteIdent(col.name)
		selects = append(selects,
			fmt.Sprintf("MIN(%s)", q),
			fmt.Sprintf("MAX(%s)", q),
			fmt.Sprintf("AVG(%s)", q),
			fmt.Sprintf("SUM(%s)", q),
		)
	}

	row := l.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s", strings.Join(selects, ", "), quoteIdent(name)))

	values := make([]*float64, len(selects))
	dest := make([]any, len(selects))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := row.Scan(dest...); err != nil {
		return fmt.Errorf("failed to compute statistics of %q: %w", name, err)
	}

	info.Stats = make(map[string]domain.ColumnStats, len(numeric))
	for i, col := range numeric {
		base := i * 4
		// All four are NULL only when the table is empty.
		if values[base] == nil {
			continue
		}
		info.Stats[col.name] = domain.ColumnStats{
			Min: *values[base],
			Max: *values[base+1],
			Avg: *values[base+2],
			Sum: *values[base+3],
		}
	}
	return nil
}

// scanRows runs a query and renders every row as a column→value map.
// The result column order is returned alongside, since maps lose it.
func (l *Loader) scanRows(ctx context.Context, query string, args ...any) ([]map[string]any, []string, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	colNames, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(colNames))
		dest := make([]any, len(colNames))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan result row: %w", err)
		}

		row := make(map[string]any, len(colNames))
		for i, col := range colNames {
			row[col] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	return out, colNames, rows.Err()
}

// normalizeValue makes driver values JSON-friendly.
func normalizeValue(v any) any {
	switch value := v.(type) {
	case []byte:
		return string(value)
	default:
		return value
	}
}
