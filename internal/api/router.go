// Package api provides HTTP router setup.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/predictcheck/hindsight/internal/config"
	"github.com/predictcheck/hindsight/internal/database"
	"github.com/predictcheck/hindsight/internal/pipeline"
)

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(cfg *config.Config, engine *pipeline.Engine, store database.Store) http.Handler {
	r := chi.NewRouter()

	handler := NewHandler(engine, store)

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)

		r.Group(func(r chi.Router) {
			r.Use(RateLimitMiddleware(cfg.RateLimits.RequestsPerMinute))

			r.Post("/recap", handler.Recap)
			r.Get("/runs", handler.ListRuns)
			r.Get("/runs/{id}", handler.GetRun)
		})
	})

	return r
}
