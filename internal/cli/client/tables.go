package client

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// TableListResponse represents the table list API response.
type TableListResponse struct {
	Tables []string `json:"tables"`
}

// LoadCSVRequest represents the CSV load API request.
type LoadCSVRequest struct {
	Path string `json:"path"`
	Name string `json:"name,omitempty"`
}

// ImportTableRequest represents the Postgres import API request.
type ImportTableRequest struct {
	Table string `json:"table"`
	Limit int    `json:"limit,omitempty"`
}

// TableInfo represents the table info API response.
type TableInfo struct {
	Name       string            `json:"table_name"`
	Columns    []string          `json:"columns"`
	Types      map[string]string `json:"types"`
	RowCount   int               `json:"row_count"`
	NullCounts map[string]int    `json:"null_counts"`
	Stats      map[string]Stats  `json:"statistics,omitempty"`
	SampleRows []map[string]any  `json:"sample_rows"`
}

// Stats carries numeric column statistics.
type Stats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	Sum float64 `json:"sum"`
}

// TablesCmd creates the tables command group.
func TablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Manage tabular data",
		Long:  "List, load, inspect, and import tables for the data agent.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runTablesList(outputJSON)
		},
	}

	cmd.AddCommand(tablesLoadCmd())
	cmd.AddCommand(tablesInfoCmd())
	cmd.AddCommand(tablesImportCmd())
	cmd.AddCommand(tablesSourceCmd())

	return cmd
}

func tablesLoadCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "load <path>",
		Short: "Load a CSV file into the table store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runTablesLoad(args[0], name, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Table name (default: derived from the file name)")

	return cmd
}

func tablesInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <table>",
		Short: "Show a table's schema and statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runTablesInfo(args[0], outputJSON)
		},
	}
}

func tablesImportCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "import <table>",
		Short: "Import a table from the configured Postgres source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runTablesImport(args[0], limit, outputJSON)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of rows to import (0 imports everything)")

	return cmd
}

func tablesSourceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "source",
		Short: "List tables available in the Postgres source",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runTablesSource(outputJSON)
		},
	}
}

func runTablesList(outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/tables")
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	var out TableListResponse
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return fmt.Errorf("failed to parse table list: %w", err)
	}

	if outputJSON {
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(out.Tables) == 0 {
		fmt.Println("No tables loaded.")
		return nil
	}
	for _, name := range out.Tables {
		fmt.Println(name)
	}
	return nil
}

func runTablesLoad(path, name string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Post("/tables/csv", LoadCSVRequest{Path: path, Name: name})
	if err != nil {
		return fmt.Errorf("failed to load CSV: %w", err)
	}

	var out struct {
		Table string `json:"table"`
	}
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return fmt.Errorf("failed to parse load response: %w", err)
	}

	if outputJSON {
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Printf("Loaded %s as table %q\n", path, out.Table)
	}
	return nil
}

func runTablesInfo(table string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/tables/" + table)
	if err != nil {
		return fmt.Errorf("failed to get table info: %w", err)
	}

	if outputJSON {
		var raw json.RawMessage = resp.Data
		data, _ := json.MarshalIndent(raw, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	var info TableInfo
	if err := json.Unmarshal(resp.Data, &info); err != nil {
		return fmt.Errorf("failed to parse table info: %w", err)
	}

	fmt.Printf("Table: %s (%d rows)\n\n", info.Name, info.RowCount)
	for _, col := range info.Columns {
		line := fmt.Sprintf("  %-20s %s", col, info.Types[col])
		if nulls := info.NullCounts[col]; nulls > 0 {
			line += fmt.Sprintf("  (%d nulls)", nulls)
		}
		if stats, ok := info.Stats[col]; ok {
			line += fmt.Sprintf("  min=%g max=%g avg=%g", stats.Min, stats.Max, stats.Avg)
		}
		fmt.Println(line)
	}
	return nil
}

func runTablesImport(table string, limit int, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Post("/tables/import", ImportTableRequest{Table: table, Limit: limit})
	if err != nil {
		return fmt.Errorf("failed to import table: %w", err)
	}

	var out struct {
		Table string `json:"table"`
	}
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return fmt.Errorf("failed to parse import response: %w", err)
	}

	if outputJSON {
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Printf("Imported table %q\n", out.Table)
	}
	return nil
}

func runTablesSource(outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/tables/source")
	if err != nil {
		return fmt.Errorf("failed to list source tables: %w", err)
	}

	var out TableListResponse
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return fmt.Errorf("failed to parse source table list: %w", err)
	}

	if outputJSON {
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(out.Tables) == 0 {
		fmt.Println("No tables in source database.")
		return nil
	}
	sort.Strings(out.Tables)
	fmt.Println(strings.Join(out.Tables, "\n"))
	return nil
}
