package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/sectorrun/sectorrun/internal/backtest"
)

// backtestRequest is the POST body for /api/backtest/run. Dates are
// YYYY-MM-DD; omitted fields take engine defaults.
type backtestRequest struct {
	StartDate          string  `json:"start_date"`
	EndDate            string  `json:"end_date,omitempty"`
	InitialCapital     float64 `json:"initial_capital,omitempty"`
	RebalanceFrequency string  `json:"rebalance_frequency,omitempty"`
	TopN               int     `json:"top_n_sectors,omitempty"`
	RiskFreeRate       float64 `json:"risk_free_rate,omitempty"`
	Benchmark          string  `json:"benchmark,omitempty"`
}

func (req backtestRequest) toConfig() (backtest.Config, error) {
	var cfg backtest.Config
	var err error

	if req.StartDate == "" {
		return cfg, errors.New("start_date is required")
	}
	cfg.StartDate, err = time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return cfg, errors.New("start_date must be YYYY-MM-DD")
	}
	if req.EndDate != "" {
		cfg.EndDate, err = time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return cfg, errors.New("end_date must be YYYY-MM-DD")
		}
	}
	cfg.InitialCapital = req.InitialCapital
	cfg.RebalanceFrequency = backtest.Frequency(req.RebalanceFrequency)
	cfg.TopN = req.TopN
	cfg.RiskFreeRate = req.RiskFreeRate
	cfg.Benchmark = req.Benchmark
	return cfg, nil
}

// RunBacktest handles POST /api/backtest/run.
func (h *Handlers) RunBacktest(w http.ResponseWriter, r *http.Request) {
	var req backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cfg, err := req.toConfig()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := h.engine.RunBacktest(r.Context(), cfg)
	if err != nil {
		switch {
		case errors.Is(err, backtest.ErrInvalidConfig):
			h.metrics.BacktestFinished("rejected")
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, backtest.ErrNoData):
			h.metrics.BacktestFinished("no_data")
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.metrics.BacktestFinished("error")
			log.Error().Err(err).Msg("backtest run failed")
			h.writeError(w, http.StatusInternalServerError, "backtest run failed")
		}
		return
	}

	h.metrics.BacktestFinished("completed")
	h.writeJSON(w, http.StatusOK, run)
}

// BacktestResult handles GET /api/backtest/results/{id}.
func (h *Handlers) BacktestResult(w http.ResponseWriter, r *http.Request) {
	if h.repos.Backtests == nil {
		h.writeError(w, http.StatusServiceUnavailable, "backtest storage not configured")
		return
	}
	id := mux.Vars(r)["id"]
	run, err := h.repos.Backtests.Get(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("run_id", id).Msg("backtest lookup failed")
		h.writeError(w, http.StatusInternalServerError, "backtest lookup failed")
		return
	}
	if run == nil {
		h.writeError(w, http.StatusNotFound, "backtest run not found")
		return
	}
	h.writeJSON(w, http.StatusOK, run)
}

// BacktestList handles GET /api/backtest/results?limit=N.
func (h *Handlers) BacktestList(w http.ResponseWriter, r *http.Request) {
	if h.repos.Backtests == nil {
		h.writeError(w, http.StatusServiceUnavailable, "backtest storage not configured")
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	runs, err := h.repos.Backtests.List(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("backtest listing failed")
		h.writeError(w, http.StatusInternalServerError, "backtest listing failed")
		return
	}
	h.writeJSON(w, http.StatusOK, runs)
}
