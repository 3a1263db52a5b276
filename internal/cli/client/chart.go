package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// ChartRequest represents the chart API request.
type ChartRequest struct {
	Table       string         `json:"table_name"`
	Type        string         `json:"chart_type"`
	XColumn     string         `json:"x_column,omitempty"`
	YColumn     string         `json:"y_column,omitempty"`
	GroupBy     string         `json:"group_by,omitempty"`
	Aggregation string         `json:"aggregation,omitempty"`
	Filters     map[string]any `json:"filters,omitempty"`
	Title       string         `json:"title,omitempty"`
}

// ChartCmd creates the chart command.
func ChartCmd() *cobra.Command {
	var (
		chartType   string
		xColumn     string
		yColumn     string
		groupBy     string
		aggregation string
		filters     []string
		title       string
	)

	cmd := &cobra.Command{
		Use:   "chart <table>",
		Short: "Build a chart from a loaded table",
		Long:  "Computes the data for a bar, line, pie, scatter, or histogram chart.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runChart(args[0], chartType, xColumn, yColumn, groupBy, aggregation, filters, title, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&chartType, "type", "t", "bar", "Chart type: bar, line, pie, scatter, or histogram")
	cmd.Flags().StringVarP(&xColumn, "x", "x", "", "X axis column")
	cmd.Flags().StringVarP(&yColumn, "y", "y", "", "Y axis column")
	cmd.Flags().StringVarP(&groupBy, "group-by", "g", "", "Column to group by")
	cmd.Flags().StringVar(&aggregation, "agg", "", "Aggregation for grouped charts (default: sum)")
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "Filter expression (repeatable)")
	cmd.Flags().StringVar(&title, "title", "", "Chart title")

	return cmd
}

func runChart(table, chartType, xColumn, yColumn, groupBy, aggregation string, filters []string, title string, outputJSON bool) error {
	parsedFilters, err := parseFilters(filters)
	if err != nil {
		return err
	}

	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	req := ChartRequest{
		Table:       table,
		Type:        chartType,
		XColumn:     xColumn,
		YColumn:     yColumn,
		GroupBy:     groupBy,
		Aggregation: aggregation,
		Filters:     parsedFilters,
		Title:       title,
	}

	resp, err := api.Post("/chart", req)
	if err != nil {
		return fmt.Errorf("chart failed: %w", err)
	}

	var chart ChartData
	if err := json.Unmarshal(resp.Data, &chart); err != nil {
		return fmt.Errorf("failed to parse chart response: %w", err)
	}

	if outputJSON {
		data, _ := json.MarshalIndent(chart, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	printChart(chart)
	return nil
}
