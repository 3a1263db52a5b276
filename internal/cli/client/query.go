package client

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// QueryRequest represents the query API request.
type QueryRequest struct {
	Table       string         `json:"table_name"`
	Columns     []string       `json:"columns,omitempty"`
	Filters     map[string]any `json:"filters,omitempty"`
	Aggregation string         `json:"aggregation,omitempty"`
	GroupBy     []string       `json:"group_by,omitempty"`
	Limit       int            `json:"limit,omitempty"`
}

// QueryResponse represents the query API response.
type QueryResponse struct {
	TableName        string           `json:"table_name"`
	Rows             []map[string]any `json:"rows"`
	Columns          []string         `json:"columns"`
	RowCount         int              `json:"row_count"`
	OriginalRowCount int              `json:"original_row_count"`
	Truncated        bool             `json:"truncated"`
}

// QueryCmd creates the query command.
func QueryCmd() *cobra.Command {
	var (
		columns     []string
		filters     []string
		aggregation string
		groupBy     []string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "query <table>",
		Short: "Query a loaded table",
		Long: `Runs a filter/group/aggregate query against a loaded table.

Filters take the form column=value or column<op>value where <op> is
one of ==, !=, >, >=, <, <=. Examples:

  docent query sales --filter region=north
  docent query sales --filter "sales>100" --agg sum --group-by region`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runQuery(args[0], columns, filters, aggregation, groupBy, limit, outputJSON)
		},
	}

	cmd.Flags().StringSliceVarP(&columns, "columns", "c", nil, "Columns to return")
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "Filter expression (repeatable)")
	cmd.Flags().StringVar(&aggregation, "agg", "", "Aggregation: sum, mean, count, min, or max")
	cmd.Flags().StringSliceVarP(&groupBy, "group-by", "g", nil, "Columns to group by")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of rows")

	return cmd
}

func runQuery(table string, columns, filters []string, aggregation string, groupBy []string, limit int, outputJSON bool) error {
	parsedFilters, err := parseFilters(filters)
	if err != nil {
		return err
	}

	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	req := QueryRequest{
		Table:       table,
		Columns:     columns,
		Filters:     parsedFilters,
		Aggregation: aggregation,
		GroupBy:     groupBy,
		Limit:       limit,
	}

	resp, err := api.Post("/query", req)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	var out QueryResponse
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return fmt.Errorf("failed to parse query response: %w", err)
	}

	if outputJSON {
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	printRows(out)
	return nil
}

func printRows(out QueryResponse) {
	if len(out.Rows) == 0 {
		fmt.Println("No rows.")
		return
	}

	fmt.Println(strings.Join(out.Columns, "\t"))
	for _, row := range out.Rows {
		cells := make([]string, 0, len(out.Columns))
		for _, col := range out.Columns {
			cells = append(cells, fmt.Sprintf("%v", row[col]))
		}
		fmt.Println(strings.Join(cells, "\t"))
	}

	if out.Truncated {
		fmt.Printf("\n(%d of %d rows)\n", out.RowCount, out.OriginalRowCount)
	}
}

var filterOps = []string{"==", "!=", ">=", "<=", ">", "<", "="}

// parseFilters turns CLI filter expressions into the API's filter map.
// Plain column=value means equality; other operators become an
// operator map like {">": 100}.
func parseFilters(exprs []string) (map[string]any, error) {
	if len(exprs) == 0 {
		return nil, nil
	}

	filters := make(map[string]any, len(exprs))
	for _, expr := range exprs {
		col, op, val, err := splitFilter(expr)
		if err != nil {
			return nil, err
		}

		var value any = val
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			value = f
		}

		if op == "=" || op == "==" {
			filters[col] = value
		} else {
			filters[col] = map[string]any{op: value}
		}
	}
	return filters, nil
}

func splitFilter(expr string) (col, op, val string, err error) {
	for _, candidate := range filterOps {
		if i := strings.Index(expr, candidate); i > 0 {
			col = strings.TrimSpace(expr[:i])
			val = strings.TrimSpace(expr[i+len(candidate):])
			if col == "" || val == "" {
				return "", "", "", fmt.Errorf("invalid filter %q", expr)
			}
			return col, candidate, val, nil
		}
	}
	return "", "", "", fmt.Errorf("invalid filter %q (expected column=value)", expr)
}
