package service

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
	"github.com/stackmill/docent/internal/eval"
	"github.com/stackmill/docent/internal/interactionlog"
	"github.com/stackmill/docent/internal/llm"
)

func jsonResponse(payload any) openai.ChatCompletionResponse {
	data, _ := json.Marshal(payload)
	return answerResponse(string(data))
}

func checklistPayload() map[string]any {
	var checks []map[string]any
	for _, name := range domain.CheckNames {
		checks = append(checks, map[string]any{
			"check_name":    name,
			"justification": "judged",
			"check_pass":    name != domain.CheckAnswerCitations,
		})
	}
	return map[string]any{"checklist": checks, "summary": "mostly fine"}
}

func writeLogRecords(t *testing.T, dir string, count int) {
	t.Helper()

	logger, err := interactionlog.NewLogger(dir)
	require.NoError(t, err)

	for i := 0; i < count; i++ {
		_, err := logger.Write(&domain.LogRecord{
			AgentName:    "gh_agent",
			SystemPrompt: "cite sources",
			Source:       domain.LogSourceUser,
			Messages: []domain.LogMessage{
				{Role: domain.RoleUser, Content: "question", Timestamp: time.Now()},
				{Role: domain.RoleAssistant, Content: "answer", Timestamp: time.Now()},
			},
		})
		require.NoError(t, err)
	}
}

func newTestEvalService(t *testing.T, api *mockChatAPI, logsDir string) *EvalService {
	t.Helper()

	client := llm.NewClientWithAPI(api, "")
	ingestSvc := newTestIngestService(t)
	assistant := NewAssistantService(client, ingestSvc, nil)

	return NewEvalService(
		interactionlog.NewReader(logsDir),
		eval.NewJudge(client),
		eval.NewQuestionGenerator(client),
		assistant,
		ingestSvc,
	)
}

func TestEvaluate(t *testing.T) {
	dir := t.TempDir()
	writeLogRecords(t, dir, 2)

	api := new(mockChatAPI)
	api.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(jsonResponse(checklistPayload()), nil)

	svc := newTestEvalService(t, api, dir)

	count, err := svc.CountLogs(EvalInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var progressed int
	out, err := svc.Evaluate(context.Background(), EvalInput{}, func() { progressed++ })
	require.NoError(t, err)

	assert.Len(t, out.Results, 2)
	assert.Equal(t, 2, progressed)
	assert.Equal(t, 2, out.Report.Total)
	assert.Equal(t, 0.0, out.Report.PassRates[domain.CheckAnswerCitations])
	assert.Equal(t, 1.0, out.Report.PassRates[domain.CheckAnswerRelevant])

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(&buf, out.Results))
	assert.Equal(t, 3, len(strings.Split(strings.TrimSpace(buf.String()), "\n")))
}

func TestEvaluateLimit(t *testing.T) {
	dir := t.TempDir()
	writeLogRecords(t, dir, 3)

	api := new(mockChatAPI)
	api.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(jsonResponse(checklistPayload()), nil)

	svc := newTestEvalService(t, api, dir)
	out, err := svc.Evaluate(context.Background(), EvalInput{Limit: 1}, nil)
	require.NoError(t, err)
	assert.Len(t, out.Results, 1)
}

func TestEvaluateNoLogs(t *testing.T) {
	svc := newTestEvalService(t, new(mockChatAPI), t.TempDir())

	_, err := svc.Evaluate(context.Background(), EvalInput{}, nil)
	assert.ErrorIs(t, err, domain.ErrNoLogRecords)
}

func TestRunGenerated(t *testing.T) {
	api := new(mockChatAPI)
	// Question generation, then one agent answer per question.
	api.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return req.ResponseFormat != nil
	})).Return(jsonResponse(map[string]any{
		"questions": []string{"how do I install?", "where is the config?"},
	}), nil).Once()
	api.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(answerResponse("answered"), nil)

	svc := newTestEvalService(t, api, t.TempDir())
	_, err := svc.ingest.Ingest(context.Background(), IngestInput{Owner: "acme", Repo: "docs"})
	require.NoError(t, err)

	var progressed int
	answered, err := svc.RunGenerated(context.Background(), 2, func() { progressed++ })
	require.NoError(t, err)
	assert.Equal(t, 2, answered)
	assert.Equal(t, 2, progressed)
}
