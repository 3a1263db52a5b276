package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stackmill/docent/internal/cli"
	"github.com/stackmill/docent/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "docent",
		Short: "Docent CLI - documentation and data assistant",
		Long: `Docent CLI provides commands to ingest documentation, load tabular data,
and ask the agents questions.

Environment variables:
  DOCENT_API_KEY   API key for authentication (empty if auth is disabled)
  DOCENT_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-key", "", "API key for authentication (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.InitCmd())
	rootCmd.AddCommand(client.IngestCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.TablesCmd())
	rootCmd.AddCommand(client.QueryCmd())
	rootCmd.AddCommand(client.ChartCmd())
	rootCmd.AddCommand(client.LogsCmd())
	rootCmd.AddCommand(client.EvalCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
