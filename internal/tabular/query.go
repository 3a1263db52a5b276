package tabular

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/stackmill/docent/internal/domain"
)

// DefaultQueryLimit bounds result sets when the caller does not ask
// for a limit.
const DefaultQueryLimit = 100

// Aggregation names accepted by the query tool.
const (
	AggSum   = "sum"
	AggMean  = "mean"
	AggCount = "count"
	AggMax   = "max"
	AggMin   = "min"
)

// QueryParams describes one query against a loaded table. Filters map
// a column either to a bare value (equality) or to an operator map
// such as {">": 100}. Supported operators: > < >= <= == !=.
type QueryParams struct {
	Table       string         `json:"table_name"`
	Columns     []string       `json:"columns,omitempty"`
	Filters     map[string]any `json:"filters,omitempty"`
	Aggregation string         `json:"aggregation,omitempty"`
	GroupBy     []string       `json:"group_by,omitempty"`
	Limit       int            `json:"limit,omitempty"`
}

var sqlOps = map[string]string{
	">":  ">",
	"<":  "<",
	">=": ">=",
	"<=": "<=",
	"==": "=",
	"!=": "<>",
}

var aggFuncs = map[string]string{
	AggSum:  "SUM",
	AggMean: "AVG",
	AggMax:  "MAX",
	AggMin:  "MIN",
}

// Query applies filters, projection, and optional group-by aggregation
// to a loaded table. Unknown filter and projection columns are
// silently ignored; an unknown table is an error.
func (l *Loader) Query(ctx context.Context, params QueryParams) (*domain.QueryResult, error) {
	cols, err := l.columns(params.Table)
	if err != nil {
		return nil, err
	}

	known := make(map[string]domain.ColumnType, len(cols))
	order := make([]string, len(cols))
	for i, col := range cols {
		known[col.name] = col.typ
		order[i] = col.name
	}

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	agg := strings.ToLower(strings.TrimSpace(params.Aggregation))
	if agg != "" && agg != AggCount {
		if _, ok := aggFuncs[agg]; !ok {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation,
				fmt.Sprintf("invalid aggregation function %q", params.Aggregation), domain.ErrInvalidAggregation)
		}
	}

	where, args, err := buildWhere(params.Filters, known)
	if err != nil {
		return nil, err
	}

	table := quoteIdent(params.Table)

	var total int
	if err := l.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count rows of %q: %w", params.Table, err)
	}

	query, queryArgs := buildSelect(table, order, known, params, agg, where, args, limit)

	rows, resultCols, err := l.scanRows(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("query on %q failed: %w", params.Table, err)
	}

	return &domain.QueryResult{
		TableName:        params.Table,
		Rows:             rows,
		Columns:          resultCols,
		RowCount:         len(rows),
		OriginalRowCount: total,
		Truncated:        len(rows) == limit,
	}, nil
}

// buildSelect assembles the SQL for the four query shapes: plain
// select, grouped aggregation, whole-table aggregation, and count.
func buildSelect(table string, order []string, known map[string]domain.ColumnType,
	params QueryParams, agg, where string, args []any, limit int) (string, []any) {

	projected := projectColumns(params.Columns, order, known)

	groupCols := make([]string, 0, len(params.GroupBy))
	for _, col := range params.GroupBy {
		if _, ok := known[col]; ok {
			groupCols = append(groupCols, col)
		}
	}

	switch {
	case agg != "" && len(groupCols) > 0:
		selects := make([]string, 0, len(groupCols)+4)
		for _, col := range groupCols {
			selects = append(selects, quoteIdent(col))
		}
		if agg == AggCount {
			selects = append(selects, "COUNT(*) AS count")
		} else {
			for _, col := range aggTargets(projected, order, known, groupCols) {
				selects = append(selects,
					fmt.Sprintf("%s(%s) AS %s", aggFuncs[agg], quoteIdent(col), quoteIdent(col)))
			}
		}
		groupIdents := make([]string, len(groupCols))
		for i, col := range groupCols {
			groupIdents[i] = quoteIdent(col)
		}
		query := fmt.Sprintf("SELECT %s FROM %s%s GROUP BY %s LIMIT %d",
			strings.Join(selects, ", "), table, where, strings.Join(groupIdents, ", "), limit)
		return query, args

	case agg == AggCount:
		return fmt.Sprintf("SELECT COUNT(*) AS count FROM %s%s", table, where), args

	case agg != "":
		targets := aggTargets(projected, order, known, nil)
		if len(targets) == 0 {
			// No numeric columns to aggregate; fall through to a plain
			// select the way the original tool does.
			break
		}
		selects := make([]string, len(targets))
		for i, col := range targets {
			selects[i] = fmt.Sprintf("%s(%s) AS %s", aggFuncs[agg], quoteIdent(col), quoteIdent(col))
		}
		return fmt.Sprintf("SELECT %s FROM %s%s", strings.Join(selects, ", "), table, where), args
	}

	selects := "*"
	if len(projected) > 0 {
		idents := make([]string, len(projected))
		for i, col := range projected {
			idents[i] = quoteIdent(col)
		}
		selects = strings.Join(idents, ", ")
	}
	return fmt.Sprintf("SELECT %s FROM %s%s LIMIT %d", selects, table, where, limit), args
}

// projectColumns keeps the requested columns that exist, in table
// order when no projection is requested.
func projectColumns(requested, order []string, known map[string]domain.ColumnType) []string {
	if len(requested) == 0 {
		return nil
	}
	var out []string
	for _, col := range requested {
		if _, ok := known[col]; ok {
			out = append(out, col)
		}
	}
	return out
}

// aggTargets picks the columns an aggregation applies to: the numeric
// subset of the projection, or every numeric column when nothing was
// projected. Group-by columns are never aggregated.
func aggTargets(projected, order []string, known map[string]domain.ColumnType, groupCols []string) []string {
	grouped := make(map[string]struct{}, len(groupCols))
	for _, col := range groupCols {
		grouped[col] = struct{}{}
	}

	candidates := projected
	if len(candidates) == 0 {
		candidates = order
	}

	var out []string
	for _, col := range candidates {
		if _, ok := grouped[col]; ok {
			continue
		}
		if known[col].Numeric() {
			out = append(out, col)
		}
	}
	return out
}

// buildWhere renders the filter map as a WHERE clause with bind args.
// Unknown columns are dropped; unknown operators are an error.
func buildWhere(filters map[string]any, known map[string]domain.ColumnType) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}

	// Deterministic clause order keeps queries reproducible.
	cols := make([]string, 0, len(filters))
	for col := range filters {
		if _, ok := known[col]; ok {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)

	var clauses []string
	var args []any
	for _, col := range cols {
		value := filters[col]
		if ops, ok := value.(map[string]any); ok {
			opNames := make([]string, 0, len(ops))
			for op := range ops {
				opNames = append(opNames, op)
			}
			sort.Strings(opNames)
			for _, op := range opNames {
				sqlOp, ok := sqlOps[op]
				if !ok {
					return "", nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation,
						fmt.Sprintf("invalid filter operator %q", op), domain.ErrInvalidFilterOp)
				}
				clauses = append(clauses, fmt.Sprintf("%s %s ?", quoteIdent(col), sqlOp))
				args = append(args, ops[op])
			}
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%s = ?", quoteIdent(col)))
		args = append(args, value)
	}

	if len(clauses) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

