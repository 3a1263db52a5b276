package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/stackmill/docent/internal/api"
	"github.com/stackmill/docent/internal/domain"
	"github.com/stackmill/docent/internal/service"
)

type AssistantService interface {
	Ask(ctx context.Context, question string, history []domain.LogMessage, source domain.LogSource) (*service.AskOutput, error)
}

type DataAskService interface {
	Ask(ctx context.Context, question string, history []domain.LogMessage, source domain.LogSource) (*service.DataAskOutput, error)
}

type ChatHandler struct {
	docs AssistantService
	data DataAskService
}

func NewChatHandler(docs AssistantService, data DataAskService) *ChatHandler {
	return &ChatHandler{docs: docs, data: data}
}

type ChatRequest struct {
	Question string              `json:"question"`
	Agent    string              `json:"agent"`
	Source   string              `json:"source"`
	History  []domain.LogMessage `json:"history,omitempty"`
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Question == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	source := domain.LogSource(req.Source)

	switch req.Agent {
	case "", "docs":
		out, err := h.docs.Ask(r.Context(), req.Question, req.History, source)
		if err != nil {
			api.HandleError(w, err)
			return
		}
		api.Success(w, http.StatusOK, out)
	case "data":
		out, err := h.data.Ask(r.Context(), req.Question, req.History, source)
		if err != nil {
			api.HandleError(w, err)
			return
		}
		api.Success(w, http.StatusOK, out)
	default:
		api.Error(w, http.StatusBadRequest, "unknown agent: "+req.Agent)
	}
}
