package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stackmill/docent/internal/cli"
	"github.com/stackmill/docent/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "docentd",
		Short: "Docent daemon",
		Long:  "Docent daemon for running the documentation and data assistant API server",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
