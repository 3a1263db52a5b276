package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// IngestRequest represents the ingest API request.
type IngestRequest struct {
	Owner        string `json:"owner"`
	Repo         string `json:"repo"`
	Branch       string `json:"branch,omitempty"`
	Method       string `json:"method,omitempty"`
	SectionLevel int    `json:"section_level,omitempty"`
	ChunkSize    int    `json:"chunk_size,omitempty"`
	ChunkStep    int    `json:"chunk_step,omitempty"`
}

// IngestResponse represents the ingest API response.
type IngestResponse struct {
	Owner     string `json:"owner"`
	Repo      string `json:"repo"`
	Branch    string `json:"branch"`
	Documents int    `json:"documents"`
	Chunks    int    `json:"chunks"`
}

// IngestCmd creates the ingest command.
func IngestCmd() *cobra.Command {
	var (
		branch       string
		method       string
		sectionLevel int
		chunkSize    int
		chunkStep    int
	)

	cmd := &cobra.Command{
		Use:   "ingest <owner>/<repo>",
		Short: "Ingest a GitHub repository's markdown docs",
		Long:  "Downloads the repository archive, chunks its markdown files, and builds the search index.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runIngest(args[0], branch, method, sectionLevel, chunkSize, chunkStep, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&branch, "branch", "b", "", "Branch to download (default: main)")
	cmd.Flags().StringVarP(&method, "method", "m", "", "Chunking method: sliding_window, paragraph, or section (default: whole documents)")
	cmd.Flags().IntVar(&sectionLevel, "section-level", 0, "Heading level for section chunking")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Window size for sliding_window chunking")
	cmd.Flags().IntVar(&chunkStep, "chunk-step", 0, "Window step for sliding_window chunking")

	return cmd
}

func runIngest(repoArg, branch, method string, sectionLevel, chunkSize, chunkStep int, outputJSON bool) error {
	owner, repo, ok := strings.Cut(repoArg, "/")
	if !ok || owner == "" || repo == "" {
		return fmt.Errorf("expected <owner>/<repo>, got %q", repoArg)
	}

	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	req := IngestRequest{
		Owner:        owner,
		Repo:         repo,
		Branch:       branch,
		Method:       method,
		SectionLevel: sectionLevel,
		ChunkSize:    chunkSize,
		ChunkStep:    chunkStep,
	}

	resp, err := api.Post("/ingest", req)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	var out IngestResponse
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return fmt.Errorf("failed to parse ingest response: %w", err)
	}

	if outputJSON {
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Printf("Ingested %s/%s@%s: %d documents, %d chunks\n", out.Owner, out.Repo, out.Branch, out.Documents, out.Chunks)
	}

	return nil
}
