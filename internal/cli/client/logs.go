package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// LogEntry represents one interaction log in the logs API response.
type LogEntry struct {
	LogFile  string `json:"log_file"`
	Agent    string `json:"agent"`
	Source   string `json:"source"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Model    string `json:"model"`
	Messages int    `json:"messages"`
}

// LogsCmd creates the logs command.
func LogsCmd() *cobra.Command {
	var (
		agent  string
		source string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List recorded agent interactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runLogs(agent, source, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&agent, "agent", "a", "", "Filter by agent name substring")
	cmd.Flags().StringVarP(&source, "source", "s", "", "Filter by source: user or ai-generated")

	return cmd
}

func runLogs(agent, source string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	params := url.Values{}
	if agent != "" {
		params.Set("agent", agent)
	}
	if source != "" {
		params.Set("source", source)
	}
	path := "/logs"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("failed to list logs: %w", err)
	}

	var entries []LogEntry
	if err := json.Unmarshal(resp.Data, &entries); err != nil {
		return fmt.Errorf("failed to parse logs: %w", err)
	}

	if outputJSON {
		data, _ := json.MarshalIndent(entries, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(entries) == 0 {
		fmt.Println("No logs found.")
		return nil
	}

	for _, entry := range entries {
		question := entry.Question
		if len(question) > 60 {
			question = question[:57] + "..."
		}
		fmt.Printf("%-40s %-12s %-12s %s\n", filepath.Base(entry.LogFile), entry.Agent, entry.Source, strings.ReplaceAll(question, "\n", " "))
	}
	fmt.Printf("\n%d logs\n", len(entries))
	return nil
}
