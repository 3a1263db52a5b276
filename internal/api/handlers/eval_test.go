package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stackmill/docent/internal/domain"
	"github.com/stackmill/docent/internal/service"
)

type MockEvalService struct {
	mock.Mock
}

func (m *MockEvalService) Evaluate(ctx context.Context, input service.EvalInput, progress func()) (*service.EvalOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EvalOutput), args.Error(1)
}

func (m *MockEvalService) WriteCSV(w io.Writer, results []domain.EvalResult) error {
	args := m.Called(w, results)
	return args.Error(0)
}

func (m *MockEvalService) GenerateQuestions(ctx context.Context, numQuestions int) ([]string, error) {
	args := m.Called(ctx, numQuestions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockEvalService) RunGenerated(ctx context.Context, numQuestions int, progress func()) (int, error) {
	args := m.Called(ctx, numQuestions)
	return args.Int(0), args.Error(1)
}

func TestEvalHandler_Evaluate_Success(t *testing.T) {
	mockSvc := new(MockEvalService)
	handler := NewEvalHandler(mockSvc)

	mockSvc.On("Evaluate", mock.Anything, service.EvalInput{
		Agent:  "gh_agent",
		Source: domain.LogSourceUser,
		Limit:  10,
	}).Return(&service.EvalOutput{
		Report: &domain.EvalReport{
			Total:     10,
			PassRates: map[string]float64{"answer_citations": 0.8},
		},
	}, nil)

	body := `{"agent":"gh_agent","source":"user","limit":10}`
	req := httptest.NewRequest(http.MethodPost, "/eval", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Evaluate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	report := data["report"].(map[string]interface{})
	assert.Equal(t, float64(10), report["total"])
	mockSvc.AssertExpectations(t)
}

func TestEvalHandler_Evaluate_NoLogs(t *testing.T) {
	mockSvc := new(MockEvalService)
	handler := NewEvalHandler(mockSvc)

	mockSvc.On("Evaluate", mock.Anything, mock.Anything).Return(nil, domain.ErrNoLogRecords)

	req := httptest.NewRequest(http.MethodPost, "/eval", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()

	handler.Evaluate(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEvalHandler_Evaluate_InvalidJSON(t *testing.T) {
	handler := NewEvalHandler(new(MockEvalService))

	req := httptest.NewRequest(http.MethodPost, "/eval", bytes.NewReader([]byte(`{invalid`)))
	w := httptest.NewRecorder()

	handler.Evaluate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestEvalHandler_ExportCSV(t *testing.T) {
	mockSvc := new(MockEvalService)
	handler := NewEvalHandler(mockSvc)

	results := []domain.EvalResult{{}}
	mockSvc.On("Evaluate", mock.Anything, mock.Anything).Return(&service.EvalOutput{Results: results}, nil)
	mockSvc.On("WriteCSV", mock.Anything, results).Run(func(args mock.Arguments) {
		w := args.Get(0).(io.Writer)
		w.Write([]byte("file,question,answer\n"))
	}).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/eval/export", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()

	handler.ExportCSV(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "file,question,answer")
	mockSvc.AssertExpectations(t)
}

func TestEvalHandler_Questions_Success(t *testing.T) {
	mockSvc := new(MockEvalService)
	handler := NewEvalHandler(mockSvc)

	mockSvc.On("GenerateQuestions", mock.Anything, 5).
		Return([]string{"How do I install?", "What formats are supported?"}, nil)

	body := `{"num_questions":5}`
	req := httptest.NewRequest(http.MethodPost, "/eval/questions", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Questions(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "What formats are supported?")
	mockSvc.AssertExpectations(t)
}

func TestEvalHandler_Questions_EmptyIndex(t *testing.T) {
	mockSvc := new(MockEvalService)
	handler := NewEvalHandler(mockSvc)

	mockSvc.On("GenerateQuestions", mock.Anything, 0).Return(nil, domain.ErrIndexEmpty)

	req := httptest.NewRequest(http.MethodPost, "/eval/questions", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()

	handler.Questions(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEvalHandler_Generate_Success(t *testing.T) {
	mockSvc := new(MockEvalService)
	handler := NewEvalHandler(mockSvc)

	mockSvc.On("RunGenerated", mock.Anything, 3).Return(3, nil)

	body := `{"num_questions":3}`
	req := httptest.NewRequest(http.MethodPost, "/eval/generate", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Generate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"answered":3`)
	mockSvc.AssertExpectations(t)
}
