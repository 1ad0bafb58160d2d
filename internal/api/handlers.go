// Package api provides HTTP API handlers.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/predictcheck/hindsight/internal/database"
	"github.com/predictcheck/hindsight/internal/models"
	"github.com/predictcheck/hindsight/internal/pipeline"
	"github.com/rs/zerolog/log"
)

// Handler contains all HTTP handlers.
type Handler struct {
	engine *pipeline.Engine
	store  database.Store
}

// NewHandler creates a new handler.
func NewHandler(engine *pipeline.Engine, store database.Store) *Handler {
	return &Handler{
		engine: engine,
		store:  store,
	}
}

// HealthCheck returns the service health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	writeJSON(w, http.StatusOK, response)
}

// Recap verifies the predictions in a submitted transcript and returns the
// finished run with its per-claim verdicts.
func (h *Handler) Recap(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Transcript == "" {
		writeError(w, http.StatusBadRequest, "Transcript is required")
		return
	}

	result, err := h.engine.RecapTranscript(r.Context(), "api", req.Title, req.Intro, req.Transcript)
	if err != nil {
		log.Error().Err(err).Msg("Recap failed")
		writeError(w, http.StatusInternalServerError, "Recap failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// GetRun returns one run with its entries.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "ID is required")
		return
	}

	run, err := h.store.GetRun(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get run")
		writeError(w, http.StatusInternalServerError, "Failed to get run")
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "Run not found")
		return
	}

	entries, err := h.store.GetRunEntries(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get run entries")
		writeError(w, http.StatusInternalServerError, "Failed to get run entries")
		return
	}

	writeJSON(w, http.StatusOK, models.RunResponse{Run: *run, Entries: entries})
}

// ListRuns returns paginated runs, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	runs, err := h.store.ListRuns(r.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list runs")
		writeError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"runs":   runs,
		"limit":  limit,
		"offset": offset,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
