package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stackmill/docent/internal/api"
	"github.com/stackmill/docent/internal/domain"
	"github.com/stackmill/docent/internal/schema"
	"github.com/stackmill/docent/internal/tabular"
)

type TableService interface {
	Tables() []string
	TableDocs() []schema.TableDoc
	Info(ctx context.Context, name string) (*domain.TableInfo, error)
	LoadCSV(ctx context.Context, path, name string) (string, error)
	ListSourceTables(ctx context.Context) ([]string, error)
	ImportTable(ctx context.Context, table string, limit int) (string, error)
	Query(ctx context.Context, params tabular.QueryParams) (*domain.QueryResult, error)
	Chart(ctx context.Context, params tabular.ChartParams) (*domain.ChartSpec, error)
}

type TableHandler struct {
	svc TableService
}

func NewTableHandler(svc TableService) *TableHandler {
	return &TableHandler{svc: svc}
}

type LoadCSVRequest struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

type LoadCSVResponse struct {
	Table string `json:"table"`
}

type ImportTableRequest struct {
	Table string `json:"table"`
	Limit int    `json:"limit"`
}

type TableListResponse struct {
	Tables []string `json:"tables"`
}

func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, TableListResponse{Tables: h.svc.Tables()})
}

func (h *TableHandler) Docs(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.svc.TableDocs())
}

func (h *TableHandler) Info(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	info, err := h.svc.Info(r.Context(), name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, info)
}

func (h *TableHandler) LoadCSV(w http.ResponseWriter, r *http.Request) {
	var req LoadCSVRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Path == "" {
		api.Error(w, http.StatusBadRequest, "path is required")
		return
	}

	table, err := h.svc.LoadCSV(r.Context(), req.Path, req.Name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, LoadCSVResponse{Table: table})
}

func (h *TableHandler) SourceTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.svc.ListSourceTables(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, TableListResponse{Tables: tables})
}

func (h *TableHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Table == "" {
		api.Error(w, http.StatusBadRequest, "table is required")
		return
	}

	table, err := h.svc.ImportTable(r.Context(), req.Table, req.Limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, LoadCSVResponse{Table: table})
}

func (h *TableHandler) Query(w http.ResponseWriter, r *http.Request) {
	var params tabular.QueryParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if params.Table == "" {
		api.Error(w, http.StatusBadRequest, "table_name is required")
		return
	}

	result, err := h.svc.Query(r.Context(), params)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, result)
}

func (h *TableHandler) Chart(w http.ResponseWriter, r *http.Request) {
	var params tabular.ChartParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if params.Table == "" {
		api.Error(w, http.StatusBadRequest, "table_name is required")
		return
	}

	spec, err := h.svc.Chart(r.Context(), params)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, spec)
}
