// Package eval judges logged agent interactions with an LLM and
// aggregates the verdicts into pass-rate reports.
package eval

import "github.com/stackmill/docent/internal/domain"

// RedactedToolResult replaces tool outputs in simplified transcripts
// to keep the judge prompt small.
const RedactedToolResult = "RETURN_RESULTS_REDACTED"

type simplifiedToolCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type simplifiedMessage struct {
	Role      string               `json:"role"`
	Content   string               `json:"content,omitempty"`
	ToolCalls []simplifiedToolCall `json:"tool_calls,omitempty"`
	ToolName  string               `json:"tool_name,omitempty"`
}

// simplifyMessages strips timestamps and call IDs and redacts tool
// outputs, keeping only what the judge needs to follow the exchange.
func simplifyMessages(messages []domain.LogMessage) []simplifiedMessage {
	out := make([]simplifiedMessage, 0, len(messages))
	for _, m := range messages {
		simplified := simplifiedMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
		if m.Role == domain.RoleTool {
			simplified.Content = RedactedToolResult
			simplified.ToolName = m.ToolName
		}
		for _, call := range m.ToolCalls {
			simplified.ToolCalls = append(simplified.ToolCalls, simplifiedToolCall{
				Name:      call.Name,
				Arguments: call.Arguments,
			})
		}
		out = append(out, simplified)
	}
	return out
}
