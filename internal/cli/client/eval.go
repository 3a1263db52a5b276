package client

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// EvalRequest represents the eval API request.
type EvalRequest struct {
	Agent  string `json:"agent,omitempty"`
	Source string `json:"source,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// EvalReport represents the aggregate section of the eval API response.
type EvalReport struct {
	Total     int                `json:"total"`
	PassRates map[string]float64 `json:"pass_rates"`
	Failures  []EvalFailure      `json:"failures,omitempty"`
}

// EvalFailure lists the checks one interaction failed.
type EvalFailure struct {
	LogFile      string   `json:"log_file"`
	Question     string   `json:"question"`
	FailedChecks []string `json:"failed_checks"`
}

type evalResponse struct {
	Report *EvalReport `json:"report"`
}

// EvalCmd creates the eval command group.
func EvalCmd() *cobra.Command {
	var (
		agent   string
		source  string
		limit   int
		csvPath string
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Judge recorded interactions",
		Long:  "Runs the LLM judge over recorded interaction logs and prints per-check pass rates.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			if csvPath != "" {
				return runEvalExport(agent, source, limit, csvPath)
			}
			return runEvalJudge(agent, source, limit, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&agent, "agent", "a", "", "Filter by agent name substring")
	cmd.Flags().StringVarP(&source, "source", "s", "", "Filter by source: user or ai-generated")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Judge at most this many logs")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write per-check results to this CSV file instead of printing a report")

	cmd.AddCommand(evalQuestionsCmd())
	cmd.AddCommand(evalGenerateCmd())

	return cmd
}

func evalQuestionsCmd() *cobra.Command {
	var num int

	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Generate evaluation questions from the indexed docs",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runEvalQuestions(num, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&num, "num", "n", 10, "Number of questions to generate")

	return cmd
}

func evalGenerateCmd() *cobra.Command {
	var num int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate questions and run them through the docs agent",
		Long:  "Generates questions from the indexed docs, answers each with the docs agent, and records the interactions as ai-generated logs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runEvalGenerate(num, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&num, "num", "n", 10, "Number of questions to generate and answer")

	return cmd
}

// spin shows an indeterminate progress bar until stop is closed.
func spin(description string) chan<- struct{} {
	stop := make(chan struct{})
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				_ = bar.Finish()
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()
	return stop
}

func runEvalJudge(agent, source string, limit int, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	var stop chan<- struct{}
	if !outputJSON {
		stop = spin("judging logs")
	}
	resp, err := api.Post("/eval", EvalRequest{Agent: agent, Source: source, Limit: limit})
	if stop != nil {
		close(stop)
	}
	if err != nil {
		return fmt.Errorf("eval failed: %w", err)
	}

	var out evalResponse
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return fmt.Errorf("failed to parse eval response: %w", err)
	}
	if out.Report == nil {
		return fmt.Errorf("eval response missing report")
	}

	if outputJSON {
		data, _ := json.MarshalIndent(out.Report, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	printReport(out.Report)
	return nil
}

func runEvalExport(agent, source string, limit int, csvPath string) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	stop := spin("judging logs")
	data, err := api.PostRaw("/eval/export", EvalRequest{Agent: agent, Source: source, Limit: limit})
	close(stop)
	if err != nil {
		return fmt.Errorf("eval export failed: %w", err)
	}

	if err := os.WriteFile(csvPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", csvPath, err)
	}

	fmt.Printf("Wrote %s\n", csvPath)
	return nil
}

func printReport(report *EvalReport) {
	fmt.Printf("Judged %d interactions\n\n", report.Total)

	checks := make([]string, 0, len(report.PassRates))
	for check := range report.PassRates {
		checks = append(checks, check)
	}
	sort.Strings(checks)

	for _, check := range checks {
		rate := report.PassRates[check]
		line := fmt.Sprintf("  %-24s %5.1f%%", check, rate*100)
		if rate < 1.0 {
			color.Yellow("%s", line)
		} else {
			fmt.Println(line)
		}
	}

	if len(report.Failures) > 0 {
		fmt.Println()
		color.New(color.FgRed, color.Bold).Printf("%d failures:\n", len(report.Failures))
		for _, failure := range report.Failures {
			question := failure.Question
			if len(question) > 60 {
				question = question[:57] + "..."
			}
			fmt.Printf("  %s\n    %s\n    failed: %v\n", failure.LogFile, question, failure.FailedChecks)
		}
	}
}

func runEvalQuestions(num int, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	var stop chan<- struct{}
	if !outputJSON {
		stop = spin("generating questions")
	}
	resp, err := api.Post("/eval/questions", map[string]int{"num_questions": num})
	if stop != nil {
		close(stop)
	}
	if err != nil {
		return fmt.Errorf("question generation failed: %w", err)
	}

	var out struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return fmt.Errorf("failed to parse questions: %w", err)
	}

	if outputJSON {
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	for i, question := range out.Questions {
		fmt.Printf("%d. %s\n", i+1, question)
	}
	return nil
}

func runEvalGenerate(num int, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	var stop chan<- struct{}
	if !outputJSON {
		stop = spin("answering generated questions")
	}
	resp, err := api.Post("/eval/generate", map[string]int{"num_questions": num})
	if stop != nil {
		close(stop)
	}
	if err != nil {
		return fmt.Errorf("generation run failed: %w", err)
	}

	var out struct {
		Answered int `json:"answered"`
	}
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return fmt.Errorf("failed to parse generation response: %w", err)
	}

	if outputJSON {
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Printf("Answered %d generated questions (source: ai-generated)\n", out.Answered)
	}
	return nil
}
