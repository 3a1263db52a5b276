package eval

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stackmill/docent/internal/domain"
	"github.com/stackmill/docent/internal/llm"
)

type mockChatAPI struct {
	mock.Mock
}

func (m *mockChatAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func jsonResponse(payload any) openai.ChatCompletionResponse {
	data, _ := json.Marshal(payload)
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: string(data)}},
		},
	}
}

func sampleRecord() *domain.LogRecord {
	now := time.Now()
	return &domain.LogRecord{
		AgentName:    "gh_agent",
		SystemPrompt: "cite your sources",
		Provider:     "openai",
		Model:        "gpt-4o-mini",
		Tools:        []string{"search"},
		Source:       domain.LogSourceUser,
		LogFile:      "/logs/gh_agent_20260314_150926_abc123.json",
		Messages: []domain.LogMessage{
			{Role: domain.RoleSystem, Content: "cite your sources", Timestamp: now},
			{Role: domain.RoleUser, Content: "how do I install?", Timestamp: now},
			{Role: domain.RoleAssistant, ToolCalls: []domain.ToolCall{
				{ID: "call_1", Name: "search", Arguments: `{"query":"install"}`},
			}, Timestamp: now},
			{Role: domain.RoleTool, Content: `[{"filename":"install.md"}]`, ToolCallID: "call_1", ToolName: "search", Timestamp: now},
			{Role: domain.RoleAssistant, Content: "run make install, see [install](https://example.com)", Timestamp: now},
		},
	}
}

func fullChecklist(failing ...string) *domain.EvalChecklist {
	failed := make(map[string]bool, len(failing))
	for _, name := range failing {
		failed[name] = true
	}
	checklist := &domain.EvalChecklist{Summary: "ok"}
	for _, name := range domain.CheckNames {
		checklist.Checks = append(checklist.Checks, domain.EvalCheck{
			Name:          name,
			Justification: "judged",
			Pass:          !failed[name],
		})
	}
	return checklist
}

func TestSimplifyMessages(t *testing.T) {
	simplified := simplifyMessages(sampleRecord().Messages)
	require.Len(t, simplified, 5)

	assert.Equal(t, "how do I install?", simplified[1].Content)

	toolMsg := simplified[3]
	assert.Equal(t, RedactedToolResult, toolMsg.Content)
	assert.Equal(t, "search", toolMsg.ToolName)

	assistantCall := simplified[2]
	require.Len(t, assistantCall.ToolCalls, 1)
	assert.Equal(t, "search", assistantCall.ToolCalls[0].Name)
}

func TestJudgeEvaluate(t *testing.T) {
	api := new(mockChatAPI)
	api.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		user := req.Messages[1].Content
		return strings.Contains(user, "<QUESTION>how do I install?</QUESTION>") &&
			strings.Contains(user, "<INSTRUCTIONS>cite your sources</INSTRUCTIONS>") &&
			strings.Contains(user, RedactedToolResult) &&
			!strings.Contains(user, "install.md")
	})).Return(jsonResponse(fullChecklist()), nil).Once()

	judge := NewJudge(llm.NewClientWithAPI(api, ""))
	checklist, err := judge.Evaluate(context.Background(), sampleRecord())
	require.NoError(t, err)

	assert.Len(t, checklist.Checks, len(domain.CheckNames))
	pass, ok := checklist.Passed(domain.CheckToolCallSearch)
	assert.True(t, ok)
	assert.True(t, pass)
	api.AssertExpectations(t)
}

func TestJudgeEvaluateEmptyRecord(t *testing.T) {
	judge := NewJudge(llm.NewClientWithAPI(new(mockChatAPI), ""))
	_, err := judge.Evaluate(context.Background(), &domain.LogRecord{})
	assert.ErrorIs(t, err, domain.ErrNoLogRecords)
}

func TestEvaluateAllSkipsFailures(t *testing.T) {
	api := new(mockChatAPI)
	api.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(jsonResponse(map[string]any{"checklist": []any{}, "summary": ""}), nil).Once()
	api.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(jsonResponse(fullChecklist()), nil).Once()

	judge := NewJudge(llm.NewClientWithAPI(api, ""))

	var progressed int
	results, err := judge.EvaluateAll(context.Background(),
		[]*domain.LogRecord{sampleRecord(), sampleRecord()},
		func() { progressed++ })
	require.NoError(t, err)

	assert.Len(t, results, 1)
	assert.Equal(t, 2, progressed)
}

func TestEvaluateAllNoRecords(t *testing.T) {
	judge := NewJudge(llm.NewClientWithAPI(new(mockChatAPI), ""))
	_, err := judge.EvaluateAll(context.Background(), nil, nil)
	assert.ErrorIs(t, err, domain.ErrNoLogRecords)
}

func TestQuestionGenerator(t *testing.T) {
	api := new(mockChatAPI)
	api.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(jsonResponse(map[string]any{
			"questions": []string{"how do I install?", "what is the config format?"},
		}), nil).Once()

	generator := NewQuestionGenerator(llm.NewClientWithAPI(api, ""))
	questions, err := generator.Generate(context.Background(), []domain.Chunk{
		{Filename: "install.md", Content: "installation guide"},
		{Filename: "config.md", Content: "configuration reference"},
	}, 2)
	require.NoError(t, err)
	assert.Len(t, questions, 2)
}

func TestQuestionGeneratorNoChunks(t *testing.T) {
	generator := NewQuestionGenerator(llm.NewClientWithAPI(new(mockChatAPI), ""))
	_, err := generator.Generate(context.Background(), nil, 5)
	assert.ErrorIs(t, err, domain.ErrIndexEmpty)
}

func TestBuildReport(t *testing.T) {
	results := []domain.EvalResult{
		{Record: sampleRecord(), Checklist: fullChecklist()},
		{Record: sampleRecord(), Checklist: fullChecklist(domain.CheckAnswerCitations, domain.CheckCompleteness)},
	}

	report := BuildReport(results)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1.0, report.PassRates[domain.CheckAnswerRelevant])
	assert.Equal(t, 0.5, report.PassRates[domain.CheckAnswerCitations])

	require.Len(t, report.Failures, 1)
	failure := report.Failures[0]
	assert.Equal(t, "gh_agent_20260314_150926_abc123.json", failure.LogFile)
	assert.ElementsMatch(t,
		[]string{domain.CheckAnswerCitations, domain.CheckCompleteness},
		failure.FailedChecks)
}

func TestWriteCSV(t *testing.T) {
	results := []domain.EvalResult{
		{Record: sampleRecord(), Checklist: fullChecklist(domain.CheckCompleteness)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, results))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "file,question,answer,instructions_follow"))
	assert.Contains(t, lines[1], "gh_agent_20260314_150926_abc123.json")
	assert.Contains(t, lines[1], "false")
}
