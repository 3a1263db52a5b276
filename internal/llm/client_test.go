package llm

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockChatAPI struct {
	mock.Mock
}

func (m *mockChatAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func textResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
	}
}

func TestChatFillsConfiguredModel(t *testing.T) {
	api := new(mockChatAPI)
	api.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return req.Model == "gpt-4o-mini"
	})).Return(textResponse("hello"), nil)

	client := NewClientWithAPI(api, "")
	resp, err := client.Chat(context.Background(), openai.ChatCompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Choices[0].Message.Content)
	api.AssertExpectations(t)
}

func TestChatKeepsExplicitModel(t *testing.T) {
	api := new(mockChatAPI)
	api.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return req.Model == "gpt-4o"
	})).Return(textResponse("ok"), nil)

	client := NewClientWithAPI(api, "gpt-4o-mini")
	_, err := client.Chat(context.Background(), openai.ChatCompletionRequest{Model: "gpt-4o"})
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestChatEmptyChoices(t *testing.T) {
	api := new(mockChatAPI)
	api.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, nil)

	client := NewClientWithAPI(api, "")
	_, err := client.Chat(context.Background(), openai.ChatCompletionRequest{})
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestChatWrapsAPIError(t *testing.T) {
	apiErr := errors.New("rate limited")
	api := new(mockChatAPI)
	api.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, apiErr)

	client := NewClientWithAPI(api, "")
	_, err := client.Chat(context.Background(), openai.ChatCompletionRequest{})
	assert.ErrorIs(t, err, apiErr)
}

func TestComplete(t *testing.T) {
	api := new(mockChatAPI)
	api.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return len(req.Messages) == 2 &&
			req.Messages[0].Role == openai.ChatMessageRoleSystem &&
			req.Messages[1].Content == "what is Go?"
	})).Return(textResponse("a programming language"), nil)

	client := NewClientWithAPI(api, "")
	answer, err := client.Complete(context.Background(), "be brief", "what is Go?")
	require.NoError(t, err)
	assert.Equal(t, "a programming language", answer)
}

func TestCompleteJSON(t *testing.T) {
	api := new(mockChatAPI)
	api.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return req.ResponseFormat != nil &&
			req.ResponseFormat.Type == openai.ChatCompletionResponseFormatTypeJSONObject
	})).Return(textResponse("```json\n{\"score\": 7}\n```"), nil)

	client := NewClientWithAPI(api, "")
	var out struct {
		Score int `json:"score"`
	}
	require.NoError(t, client.CompleteJSON(context.Background(), "judge", "grade this", &out))
	assert.Equal(t, 7, out.Score)
}

func TestCompleteJSONInvalidPayload(t *testing.T) {
	api := new(mockChatAPI)
	api.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(textResponse("not json"), nil)

	client := NewClientWithAPI(api, "")
	var out map[string]any
	err := client.CompleteJSON(context.Background(), "judge", "grade this", &out)
	assert.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
}
