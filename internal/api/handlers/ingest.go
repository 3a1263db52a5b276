package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/stackmill/docent/internal/api"
	"github.com/stackmill/docent/internal/domain"
	"github.com/stackmill/docent/internal/service"
)

type IngestService interface {
	Ingest(ctx context.Context, input service.IngestInput) (*service.IngestOutput, error)
	Search(query string, limit int) ([]domain.Chunk, error)
}

type IngestHandler struct {
	svc IngestService
}

func NewIngestHandler(svc IngestService) *IngestHandler {
	return &IngestHandler{svc: svc}
}

type IngestRequest struct {
	Owner        string `json:"owner"`
	Repo         string `json:"repo"`
	Branch       string `json:"branch"`
	Method       string `json:"method"`
	SectionLevel int    `json:"section_level"`
	ChunkSize    int    `json:"chunk_size"`
	ChunkStep    int    `json:"chunk_step"`
}

type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Owner == "" {
		api.Error(w, http.StatusBadRequest, "owner is required")
		return
	}
	if req.Repo == "" {
		api.Error(w, http.StatusBadRequest, "repo is required")
		return
	}

	out, err := h.svc.Ingest(r.Context(), service.IngestInput{
		Owner:        req.Owner,
		Repo:         req.Repo,
		Branch:       req.Branch,
		Method:       req.Method,
		SectionLevel: req.SectionLevel,
		Size:         req.ChunkSize,
		Step:         req.ChunkStep,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, out)
}

func (h *IngestHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	hits, err := h.svc.Search(req.Query, req.Limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, hits)
}
