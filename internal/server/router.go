package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/n-vangala/interview-insights/internal/api"
	"github.com/n-vangala/interview-insights/internal/api/handlers"
	"github.com/n-vangala/interview-insights/internal/api/middleware"
)

type RouterConfig struct {
	TranscriptHandler *handlers.TranscriptHandler
	QueryHandler      *handlers.QueryHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/upload", cfg.TranscriptHandler.Upload)
	r.Post("/query", cfg.QueryHandler.Query)

	r.Route("/transcripts", func(r chi.Router) {
		r.Get("/", cfg.TranscriptHandler.List)
		r.Delete("/{transcriptID}", cfg.TranscriptHandler.Delete)
	})

	return r
}
