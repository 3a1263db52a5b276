package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/stackmill/docent/internal/api"
	"github.com/stackmill/docent/internal/domain"
	"github.com/stackmill/docent/internal/service"
)

type EvalService interface {
	Evaluate(ctx context.Context, input service.EvalInput, progress func()) (*service.EvalOutput, error)
	WriteCSV(w io.Writer, results []domain.EvalResult) error
	GenerateQuestions(ctx context.Context, numQuestions int) ([]string, error)
	RunGenerated(ctx context.Context, numQuestions int, progress func()) (int, error)
}

type EvalHandler struct {
	svc EvalService
}

func NewEvalHandler(svc EvalService) *EvalHandler {
	return &EvalHandler{svc: svc}
}

type EvalRequest struct {
	Agent  string `json:"agent"`
	Source string `json:"source"`
	Limit  int    `json:"limit"`
}

type GenerateRequest struct {
	NumQuestions int `json:"num_questions"`
}

type QuestionsResponse struct {
	Questions []string `json:"questions"`
}

type GenerateResponse struct {
	Answered int `json:"answered"`
}

func (h *EvalHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.svc.Evaluate(r.Context(), service.EvalInput{
		Agent:  req.Agent,
		Source: domain.LogSource(req.Source),
		Limit:  req.Limit,
	}, nil)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, out)
}

// ExportCSV judges matching logs and streams the per-check results as CSV.
func (h *EvalHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var req EvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.svc.Evaluate(r.Context(), service.EvalInput{
		Agent:  req.Agent,
		Source: domain.LogSource(req.Source),
		Limit:  req.Limit,
	}, nil)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="eval_results.csv"`)
	if err := h.svc.WriteCSV(w, out.Results); err != nil {
		log.Printf("eval csv export failed mid-stream: %v", err)
	}
}

func (h *EvalHandler) Questions(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	questions, err := h.svc.GenerateQuestions(r.Context(), req.NumQuestions)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, QuestionsResponse{Questions: questions})
}

func (h *EvalHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answered, err := h.svc.RunGenerated(r.Context(), req.NumQuestions, nil)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, GenerateResponse{Answered: answered})
}
