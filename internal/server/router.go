package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stackmill/docent/internal/api"
	"github.com/stackmill/docent/internal/api/handlers"
	"github.com/stackmill/docent/internal/api/middleware"
)

type RouterConfig struct {
	APIKey        string
	IngestHandler *handlers.IngestHandler
	ChatHandler   *handlers.ChatHandler
	TableHandler  *handlers.TableHandler
	LogHandler    *handlers.LogHandler
	EvalHandler   *handlers.EvalHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.APIKey))

		r.Post("/ingest", cfg.IngestHandler.Ingest)
		r.Post("/search", cfg.IngestHandler.Search)

		r.Post("/chat", cfg.ChatHandler.Chat)

		r.Route("/tables", func(r chi.Router) {
			r.Get("/", cfg.TableHandler.List)
			r.Get("/docs", cfg.TableHandler.Docs)
			r.Post("/csv", cfg.TableHandler.LoadCSV)
			r.Get("/source", cfg.TableHandler.SourceTables)
			r.Post("/import", cfg.TableHandler.Import)
			r.Get("/{name}", cfg.TableHandler.Info)
		})

		r.Post("/query", cfg.TableHandler.Query)
		r.Post("/chart", cfg.TableHandler.Chart)

		r.Get("/logs", cfg.LogHandler.List)

		r.Route("/eval", func(r chi.Router) {
			r.Post("/", cfg.EvalHandler.Evaluate)
			r.Post("/export", cfg.EvalHandler.ExportCSV)
			r.Post("/questions", cfg.EvalHandler.Questions)
			r.Post("/generate", cfg.EvalHandler.Generate)
		})
	})

	return r
}
