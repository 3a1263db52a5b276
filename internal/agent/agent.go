package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/stackmill/docent/internal/domain"
	"github.com/stackmill/docent/internal/llm"
)

// DefaultMaxTurns bounds the tool-calling loop for one question.
const DefaultMaxTurns = 10

// Tool pairs an OpenAI function definition with its handler. The
// handler receives raw JSON arguments and returns a value that is
// serialized back to the model.
type Tool struct {
	Definition openai.FunctionDefinition
	Handler    func(ctx context.Context, args json.RawMessage) (any, error)
}

// Agent drives a chat model through a tool-calling loop until it
// produces a final answer.
type Agent struct {
	name     string
	system   string
	client   *llm.Client
	tools    []Tool
	maxTurns int
}

// Result carries the final answer together with the full transcript,
// ready to be written to an interaction log.
type Result struct {
	Answer   string
	Messages []domain.LogMessage
}

func New(name, systemPrompt string, client *llm.Client, tools ...Tool) *Agent {
	return &Agent{
		name:     name,
		system:   systemPrompt,
		client:   client,
		tools:    tools,
		maxTurns: DefaultMaxTurns,
	}
}

func (a *Agent) Name() string {
	return a.name
}

func (a *Agent) SystemPrompt() string {
	return a.system
}

// ToolNames lists the tools in definition order.
func (a *Agent) ToolNames() []string {
	names := make([]string, len(a.tools))
	for i, tool := range a.tools {
		names[i] = tool.Definition.Name
	}
	return names
}

// Record wraps a transcript in a LogRecord for this agent.
func (a *Agent) Record(messages []domain.LogMessage, source domain.LogSource) *domain.LogRecord {
	return &domain.LogRecord{
		AgentName:    a.name,
		SystemPrompt: a.system,
		Provider:     llm.Provider,
		Model:        a.client.Model(),
		Tools:        a.ToolNames(),
		Messages:     messages,
		Source:       source,
	}
}

// Run answers one question, executing tool calls until the model
// replies with text. Prior history carries earlier user and assistant
// turns of the same conversation.
func (a *Agent) Run(ctx context.Context, question string, history []domain.LogMessage) (*Result, error) {
	chat := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	chat = append(chat, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleSystem, Content: a.system,
	})
	for _, m := range history {
		if m.Content == "" {
			continue
		}
		switch m.Role {
		case domain.RoleUser:
			chat = append(chat, openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleUser, Content: m.Content,
			})
		case domain.RoleAssistant:
			chat = append(chat, openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleAssistant, Content: m.Content,
			})
		}
	}
	chat = append(chat, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser, Content: question,
	})

	transcript := []domain.LogMessage{
		{Role: domain.RoleSystem, Content: a.system, Timestamp: time.Now().UTC()},
		{Role: domain.RoleUser, Content: question, Timestamp: time.Now().UTC()},
	}

	tools := make([]openai.Tool, len(a.tools))
	byName := make(map[string]Tool, len(a.tools))
	for i, tool := range a.tools {
		def := tool.Definition
		tools[i] = openai.Tool{Type: openai.ToolTypeFunction, Function: &def}
		byName[def.Name] = tool
	}

	for turn := 0; turn < a.maxTurns; turn++ {
		resp, err := a.client.Chat(ctx, openai.ChatCompletionRequest{
			Messages: chat,
			Tools:    tools,
		})
		if err != nil {
			return nil, err
		}

		message := resp.Choices[0].Message
		if len(message.ToolCalls) == 0 {
			transcript = append(transcript, domain.LogMessage{
				Role:      domain.RoleAssistant,
				Content:   message.Content,
				Timestamp: time.Now().UTC(),
			})
			return &Result{Answer: message.Content, Messages: transcript}, nil
		}

		chat = append(chat, message)
		transcript = append(transcript, domain.LogMessage{
			Role:      domain.RoleAssistant,
			Content:   message.Content,
			ToolCalls: logToolCalls(message.ToolCalls),
			Timestamp: time.Now().UTC(),
		})

		for _, call := range message.ToolCalls {
			output := a.callTool(ctx, byName, call)
			chat = append(chat, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    output,
				ToolCallID: call.ID,
			})
			transcript = append(transcript, domain.LogMessage{
				Role:       domain.RoleTool,
				Content:    output,
				ToolCallID: call.ID,
				ToolName:   call.Function.Name,
				Timestamp:  time.Now().UTC(),
			})
		}
	}

	return nil, domain.NewDomainError(domain.ErrCodeInternalError,
		fmt.Sprintf("agent %q exceeded %d tool turns without answering", a.name, a.maxTurns))
}

// callTool executes one tool call and serializes the outcome. Tool
// errors go back to the model as an error payload rather than aborting
// the conversation.
func (a *Agent) callTool(ctx context.Context, byName map[string]Tool, call openai.ToolCall) string {
	tool, ok := byName[call.Function.Name]
	if !ok {
		return errorPayload(fmt.Sprintf("unknown tool %q", call.Function.Name))
	}

	result, err := tool.Handler(ctx, json.RawMessage(call.Function.Arguments))
	if err != nil {
		return errorPayload(err.Error())
	}

	data, err := json.Marshal(result)
	if err != nil {
		return errorPayload(fmt.Sprintf("failed to serialize tool result: %v", err))
	}
	return string(data)
}

func errorPayload(message string) string {
	data, _ := json.Marshal(map[string]string{"error": message})
	return string(data)
}

func logToolCalls(calls []openai.ToolCall) []domain.ToolCall {
	out := make([]domain.ToolCall, len(calls))
	for i, call := range calls {
		out[i] = domain.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		}
	}
	return out
}
