package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/sectorrun/sectorrun/internal/domain/sectors"
)

// Dashboard handles GET /api/dashboard: the combined cycle, scores,
// indicators, and alerts read. Accepts ?date=YYYY-MM-DD for an
// historical as-of view.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	asOf, ok := asOfParam(r, "date")
	if !ok {
		h.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	snapshot, err := h.engine.ComputeDashboardSnapshot(r.Context(), asOf)
	if err != nil {
		log.Error().Err(err).Msg("dashboard computation failed")
		h.writeError(w, http.StatusInternalServerError, "dashboard computation failed")
		return
	}
	h.metrics.ScoreComputed()
	h.writeJSON(w, http.StatusOK, snapshot)
}

// Indicators handles GET /api/macro/indicators: normalized snapshots
// of the tracked macro series.
func (h *Handlers) Indicators(w http.ResponseWriter, r *http.Request) {
	asOf, ok := asOfParam(r, "date")
	if !ok {
		h.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	snaps := h.engine.Snapshots(r.Context(), orNow(asOf))
	h.writeJSON(w, http.StatusOK, snaps)
}

// Cycle handles GET /api/macro/cycle: the current phase assessment.
func (h *Handlers) Cycle(w http.ResponseWriter, r *http.Request) {
	asOf, ok := asOfParam(r, "date")
	if !ok {
		h.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	assessment, err := h.engine.ClassifyCycle(r.Context(), orNow(asOf))
	if err != nil {
		log.Error().Err(err).Msg("cycle classification failed")
		h.writeError(w, http.StatusInternalServerError, "cycle classification failed")
		return
	}
	h.writeJSON(w, http.StatusOK, assessment)
}

// CycleHistory handles GET /api/macro/cycle/history?limit=N from
// storage. Without a cycle repository it reports the endpoint as
// unavailable rather than recomputing years of history per request.
func (h *Handlers) CycleHistory(w http.ResponseWriter, r *http.Request) {
	if h.repos.Cycle == nil {
		h.writeError(w, http.StatusServiceUnavailable, "cycle history requires storage")
		return
	}
	limit := 90
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 3650 {
			limit = n
		}
	}
	history, err := h.repos.Cycle.History(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("cycle history query failed")
		h.writeError(w, http.StatusInternalServerError, "cycle history query failed")
		return
	}
	h.writeJSON(w, http.StatusOK, history)
}

// Sectors handles GET /api/sectors: the fixed universe.
func (h *Handlers) Sectors(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, sectors.Universe())
}

// Breakdown handles GET /api/sectors/{symbol}/breakdown: the component
// decomposition of one sector's composite score.
func (h *Handlers) Breakdown(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	if _, ok := sectors.Lookup(symbol); !ok {
		h.writeError(w, http.StatusNotFound, "unknown sector symbol")
		return
	}
	asOf, ok := asOfParam(r, "date")
	if !ok {
		h.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	breakdown, err := h.engine.ScoreBreakdown(r.Context(), symbol, asOf)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("score breakdown failed")
		h.writeError(w, http.StatusInternalServerError, "score breakdown failed")
		return
	}
	h.metrics.ScoreComputed()
	h.writeJSON(w, http.StatusOK, breakdown)
}

// Heatmap handles GET /api/sectors/heatmap: the indicator-by-sector
// sensitivity matrix.
func (h *Handlers) Heatmap(w http.ResponseWriter, r *http.Request) {
	asOf, ok := asOfParam(r, "date")
	if !ok {
		h.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	matrix, err := h.engine.ComputeHeatmap(r.Context(), asOf)
	if err != nil {
		log.Error().Err(err).Msg("heatmap computation failed")
		h.writeError(w, http.StatusInternalServerError, "heatmap computation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, matrix)
}

// Rankings handles GET /api/scores/rankings?date=YYYY-MM-DD. Stored
// rankings are preferred when a score repository holds the requested
// date; otherwise the cross-section is computed live.
func (h *Handlers) Rankings(w http.ResponseWriter, r *http.Request) {
	asOf, ok := asOfParam(r, "date")
	if !ok {
		h.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	if h.repos.Scores != nil && !asOf.IsZero() {
		stored, err := h.repos.Scores.Rankings(r.Context(), asOf)
		if err == nil && len(stored) > 0 {
			h.writeJSON(w, http.StatusOK, stored)
			return
		}
		if err != nil {
			log.Warn().Err(err).Msg("stored rankings unavailable, computing live")
		}
	}

	scores, _, err := h.engine.ComputeScores(r.Context(), orNow(asOf))
	if err != nil {
		log.Error().Err(err).Msg("ranking computation failed")
		h.writeError(w, http.StatusInternalServerError, "ranking computation failed")
		return
	}
	h.metrics.ScoreComputed()
	h.writeJSON(w, http.StatusOK, scores)
}
