package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ChatMessage is one prior turn carried across requests in interactive mode.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents the chat API request.
type ChatRequest struct {
	Question string        `json:"question"`
	Agent    string        `json:"agent,omitempty"`
	Source   string        `json:"source,omitempty"`
	History  []ChatMessage `json:"history,omitempty"`
}

// ChartData is the data-only chart description returned by the data agent.
type ChartData struct {
	Type    string    `json:"chart_type"`
	Title   string    `json:"title,omitempty"`
	Labels  []string  `json:"labels,omitempty"`
	XValues []float64 `json:"x_values,omitempty"`
	Values  []float64 `json:"values"`
}

// ChatResponse represents the chat API response.
type ChatResponse struct {
	Answer  string      `json:"answer"`
	Charts  []ChartData `json:"charts,omitempty"`
	LogFile string      `json:"log_file,omitempty"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var (
		agent  string
		source string
	)

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the assistant a question",
		Long:  "Sends a question to the docs agent (default) or the data agent and prints the answer. Without a question argument, starts an interactive chat session.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			if len(args) == 0 {
				return runChat(agent, source)
			}
			return runAsk(args[0], agent, source, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&agent, "agent", "a", "docs", "Agent to ask: docs or data")
	cmd.Flags().StringVarP(&source, "source", "s", "user", "Interaction log source: user or ai-generated")

	return cmd
}

func runAsk(question, agent, source string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Post("/chat", ChatRequest{
		Question: question,
		Agent:    agent,
		Source:   source,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	var out ChatResponse
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return fmt.Errorf("failed to parse chat response: %w", err)
	}

	if outputJSON {
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	color.New(color.FgCyan, color.Bold).Printf("%s agent\n\n", agent)
	fmt.Println(out.Answer)

	for _, chart := range out.Charts {
		fmt.Println()
		printChart(chart)
	}

	if out.LogFile != "" {
		color.New(color.Faint).Printf("\nlog: %s\n", out.LogFile)
	}

	return nil
}

func runChat(agent, source string) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	color.New(color.FgCyan, color.Bold).Printf("%s agent", agent)
	fmt.Println(" (empty line or Ctrl-D to exit)")

	var history []ChatMessage
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			return nil
		}

		resp, err := api.Post("/chat", ChatRequest{
			Question: question,
			Agent:    agent,
			Source:   source,
			History:  history,
		})
		if err != nil {
			color.Red("error: %v", err)
			continue
		}

		var out ChatResponse
		if err := json.Unmarshal(resp.Data, &out); err != nil {
			return fmt.Errorf("failed to parse chat response: %w", err)
		}

		fmt.Println(out.Answer)
		for _, chart := range out.Charts {
			fmt.Println()
			printChart(chart)
		}
		fmt.Println()

		history = append(history,
			ChatMessage{Role: "user", Content: question},
			ChatMessage{Role: "assistant", Content: out.Answer},
		)
	}
}

func printChart(chart ChartData) {
	title := chart.Title
	if title == "" {
		title = chart.Type + " chart"
	}
	color.New(color.FgYellow, color.Bold).Printf("%s\n", title)

	if len(chart.Labels) == len(chart.Values) && len(chart.Labels) > 0 {
		for i, label := range chart.Labels {
			fmt.Printf("  %-20s %g\n", label, chart.Values[i])
		}
		return
	}
	if len(chart.XValues) == len(chart.Values) && len(chart.XValues) > 0 {
		for i, x := range chart.XValues {
			fmt.Printf("  %g, %g\n", x, chart.Values[i])
		}
		return
	}
	fmt.Printf("  %d values\n", len(chart.Values))
}
