package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectorrun/sectorrun/internal/application"
	"github.com/sectorrun/sectorrun/internal/config"
	"github.com/sectorrun/sectorrun/internal/datasource"
	"github.com/sectorrun/sectorrun/internal/domain/sectors"
	"github.com/sectorrun/sectorrun/internal/domain/series"
)

type fixedMacro struct {
	data map[string]series.Series
}

func (f fixedMacro) IndicatorSeries(ctx context.Context, id string, start, end time.Time) (series.Series, error) {
	s := f.data[id]
	if !end.IsZero() {
		s = s.Through(end)
	}
	return s, nil
}

type fixedPrices struct {
	dates  []time.Time
	growth map[string]float64
}

func (f fixedPrices) SectorPrices(ctx context.Context, symbol string, start, end time.Time) ([]datasource.PriceBar, error) {
	g, ok := f.growth[symbol]
	if !ok {
		g = 1.0
	}
	price := 100.0
	var out []datasource.PriceBar
	for i, d := range f.dates {
		if i > 0 {
			price *= g
		}
		if !end.IsZero() && d.After(end) {
			continue
		}
		out = append(out, datasource.PriceBar{
			Date: d, Open: price, High: price, Low: price,
			Close: price, AdjClose: price, Volume: 1000,
		})
	}
	return out, nil
}

type capturingMetrics struct {
	scores    int
	backtests []string
}

func (c *capturingMetrics) ScoreComputed() { c.scores++ }
func (c *capturingMetrics) BacktestFinished(result string) {
	c.backtests = append(c.backtests, result)
}

func testRouter(t *testing.T) (*mux.Router, *capturingMetrics) {
	t.Helper()

	dates := make([]time.Time, 0, 90)
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for len(dates) < 90 {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			dates = append(dates, d)
		}
		d = d.AddDate(0, 0, 1)
	}
	last := dates[len(dates)-1]

	growth := map[string]float64{sectors.BenchmarkSymbol: 1.002}
	for i, symbol := range sectors.Symbols() {
		growth[symbol] = 0.997 + 0.0008*float64(i)
	}

	macroData := make(map[string]series.Series)
	for _, id := range []string{"T10Y2Y", "UNRATE", "BAA10Y", "CPIAUCSL"} {
		s := make(series.Series, 16)
		for i := range s {
			s[i] = series.Point{
				Date:  time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0),
				Value: 1.0 + 0.1*float64(i),
			}
		}
		macroData[id] = s
	}

	engine := application.New(config.Default(), datasource.Bundle{
		Macro:  fixedMacro{data: macroData},
		Prices: fixedPrices{dates: dates, growth: growth},
	}, application.Repos{})
	engine.SetClock(func() time.Time { return last })

	metrics := &capturingMetrics{}
	h := New(engine, application.Repos{}, metrics)

	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/dashboard", h.Dashboard).Methods(http.MethodGet)
	api.HandleFunc("/macro/indicators", h.Indicators).Methods(http.MethodGet)
	api.HandleFunc("/macro/cycle", h.Cycle).Methods(http.MethodGet)
	api.HandleFunc("/macro/cycle/history", h.CycleHistory).Methods(http.MethodGet)
	api.HandleFunc("/sectors", h.Sectors).Methods(http.MethodGet)
	api.HandleFunc("/sectors/heatmap", h.Heatmap).Methods(http.MethodGet)
	api.HandleFunc("/sectors/{symbol}/breakdown", h.Breakdown).Methods(http.MethodGet)
	api.HandleFunc("/scores/rankings", h.Rankings).Methods(http.MethodGet)
	api.HandleFunc("/backtest/run", h.RunBacktest).Methods(http.MethodPost)
	api.HandleFunc("/backtest/results", h.BacktestList).Methods(http.MethodGet)
	api.HandleFunc("/backtest/results/{id}", h.BacktestResult).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)
	return r, metrics
}

func get(t *testing.T, r *mux.Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	r, _ := testRouter(t)
	rec := get(t, r, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	decode(t, rec, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestDashboard(t *testing.T) {
	r, _ := testRouter(t)
	rec := get(t, r, "/api/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Cycle struct {
			Phase string `json:"phase"`
		} `json:"business_cycle"`
		Scores []struct {
			Symbol string `json:"symbol"`
			Rank   int    `json:"rank"`
		} `json:"sector_scores"`
	}
	decode(t, rec, &body)
	assert.NotEmpty(t, body.Cycle.Phase)
	require.Len(t, body.Scores, 11)
	assert.Equal(t, 1, body.Scores[0].Rank)
}

func TestDashboardRejectsBadDate(t *testing.T) {
	r, _ := testRouter(t)
	rec := get(t, r, "/api/dashboard?date=yesterday")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRankingsLiveFallbackCountsMetric(t *testing.T) {
	r, metrics := testRouter(t)
	rec := get(t, r, "/api/scores/rankings")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, metrics.scores)
}

func TestBreakdown(t *testing.T) {
	r, _ := testRouter(t)

	rec := get(t, r, "/api/sectors/XLK/breakdown")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Weights       map[string]float64 `json:"weights"`
		Contributions map[string]float64 `json:"contributions"`
	}
	decode(t, rec, &body)
	assert.InDelta(t, 0.40, body.Weights["ml_score"], 1e-9)
	assert.Contains(t, body.Contributions, "momentum_score")

	rec = get(t, r, "/api/sectors/TSLA/breakdown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSectorsUniverse(t *testing.T) {
	r, _ := testRouter(t)
	rec := get(t, r, "/api/sectors")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "XLK")
	assert.Contains(t, rec.Body.String(), "XLRE")
}

func TestCycleHistoryWithoutRepo(t *testing.T) {
	r, _ := testRouter(t)
	rec := get(t, r, "/api/macro/cycle/history")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBacktestRoundTrip(t *testing.T) {
	r, metrics := testRouter(t)

	body := `{"start_date":"2024-03-01","end_date":"2024-05-03","rebalance_frequency":"weekly","top_n_sectors":3}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/backtest/run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var run struct {
		State string `json:"state"`
		Stats struct {
			TradingDays int `json:"trading_days"`
		} `json:"stats"`
	}
	decode(t, rec, &run)
	assert.Equal(t, "completed", run.State)
	assert.Positive(t, run.Stats.TradingDays)
	assert.Equal(t, []string{"completed"}, metrics.backtests)
}

func TestBacktestRejectsInvalidRequest(t *testing.T) {
	r, metrics := testRouter(t)

	body := `{"start_date":"2024-05-01","end_date":"2024-03-01"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/backtest/run", strings.NewReader(body))
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"rejected"}, metrics.backtests)
}

func TestBacktestResultWithoutRepo(t *testing.T) {
	r, _ := testRouter(t)
	rec := get(t, r, "/api/backtest/results/abc")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNotFound(t *testing.T) {
	r, _ := testRouter(t)
	rec := get(t, r, "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
