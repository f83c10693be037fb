// Package handlers implements the JSON endpoints of the API server.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sectorrun/sectorrun/internal/application"
)

// Metrics is the slice of the metrics registry the handlers touch.
type Metrics interface {
	ScoreComputed()
	BacktestFinished(result string)
}

type noopMetrics struct{}

func (noopMetrics) ScoreComputed()                 {}
func (noopMetrics) BacktestFinished(result string) {}

// Handlers serves the API endpoints over the application engine.
type Handlers struct {
	engine  *application.Engine
	repos   application.Repos
	metrics Metrics
}

// New builds the handler set. Repos may hold nils for read paths that
// should fall back to live computation; metrics may be nil.
func New(engine *application.Engine, repos application.Repos, metrics Metrics) *Handlers {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Handlers{engine: engine, repos: repos, metrics: metrics}
}

type errorResponse struct {
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg, Timestamp: time.Now().UTC()})
}

// NotFound is the JSON 404 fallback.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, http.StatusNotFound, "endpoint not found")
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// asOfParam parses an optional date query parameter in YYYY-MM-DD
// form. A missing parameter yields the zero time, meaning "now".
func asOfParam(r *http.Request, name string) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
