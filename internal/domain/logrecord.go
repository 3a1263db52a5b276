package domain

import "time"

// LogSource identifies where a logged question came from.
type LogSource string

const (
	LogSourceUser        LogSource = "user"
	LogSourceAIGenerated LogSource = "ai-generated"
)

// MessageRole mirrors the chat API roles.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// ToolCall records one tool invocation made by the assistant.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// LogMessage is one turn in an interaction transcript.
type LogMessage struct {
	Role       MessageRole `json:"role"`
	Content    string      `json:"content,omitempty"`
	ToolCalls  []ToolCall  `json:"tool_calls,omitempty"`
	ToolCallID string      `json:"tool_call_id,omitempty"`
	ToolName   string      `json:"tool_name,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// LogRecord captures one full agent interaction for later evaluation.
type LogRecord struct {
	AgentName    string       `json:"agent_name"`
	SystemPrompt string       `json:"system_prompt"`
	Provider     string       `json:"provider"`
	Model        string       `json:"model"`
	Tools        []string     `json:"tools"`
	Messages     []LogMessage `json:"messages"`
	Source       LogSource    `json:"source"`
	LogFile      string       `json:"log_file,omitempty"`
}

// Question returns the first user prompt in the transcript.
func (r *LogRecord) Question() string {
	for _, m := range r.Messages {
		if m.Role == RoleUser {
			return m.Content
		}
	}
	return ""
}

// Answer returns the final assistant message in the transcript.
func (r *LogRecord) Answer() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleAssistant && r.Messages[i].Content != "" {
			return r.Messages[i].Content
		}
	}
	return ""
}
