package http

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsRegistry holds the Prometheus metrics the API server exports.
type MetricsRegistry struct {
	registry *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
	ScoreRuns       prometheus.Counter
	BacktestRuns    *prometheus.CounterVec
	CyclePhase      *prometheus.GaugeVec
}

// NewMetricsRegistry builds and registers the metric set on a private
// registry so /metrics exports only what this service owns.
func NewMetricsRegistry() *MetricsRegistry {
	m := &MetricsRegistry{
		registry: prometheus.NewRegistry(),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sectorrun_http_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"route", "status"},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectorrun_http_requests_total",
				Help: "Total API requests by route and status",
			},
			[]string{"route", "status"},
		),
		ScoreRuns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sectorrun_score_computations_total",
				Help: "Total sector score cross-sections computed",
			},
		),
		BacktestRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectorrun_backtest_runs_total",
				Help: "Total backtest runs by result",
			},
			[]string{"result"},
		),
		CyclePhase: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sectorrun_cycle_phase",
				Help: "Current business cycle phase (1 for the active phase, 0 otherwise)",
			},
			[]string{"phase"},
		),
	}

	m.registry.MustRegister(
		m.RequestDuration,
		m.RequestsTotal,
		m.ScoreRuns,
		m.BacktestRuns,
		m.CyclePhase,
	)
	return m
}

// SetPhase marks one phase active on the phase gauge.
func (m *MetricsRegistry) SetPhase(active string, all []string) {
	for _, p := range all {
		v := 0.0
		if p == active {
			v = 1.0
		}
		m.CyclePhase.WithLabelValues(p).Set(v)
	}
}

// ObserveRequest records one completed request.
func (m *MetricsRegistry) ObserveRequest(route, status string, d time.Duration) {
	m.RequestDuration.WithLabelValues(route, status).Observe(d.Seconds())
	m.RequestsTotal.WithLabelValues(route, status).Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (m *MetricsRegistry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
