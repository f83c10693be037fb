package backtest

import (
	"errors"
	"time"
)

// Frequency controls how often the basket is reselected.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Valid reports whether f is a supported rebalance frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// State tracks the simulator lifecycle.
type State string

const (
	StateInitialized State = "initialized"
	StateRunning     State = "running"
	StateCompleted   State = "completed"
	StateFailed      State = "failed"
)

var (
	// ErrInvalidConfig rejects a bad configuration before any
	// simulation work starts.
	ErrInvalidConfig = errors.New("invalid backtest config")
	// ErrNoData means the requested range has no price or score data;
	// the run fails fast instead of reporting degenerate statistics.
	ErrNoData = errors.New("no data available for backtest range")
)

// MaxTopN is the size of the sector universe.
const MaxTopN = 11

// Config describes one backtest run. It is immutable once the run
// starts.
type Config struct {
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"` // zero: latest available
	InitialCapital     float64   `json:"initial_capital"`
	RebalanceFrequency Frequency `json:"rebalance_frequency"`
	TopN               int       `json:"top_n_sectors"`
	RiskFreeRate       float64   `json:"risk_free_rate"` // annualized, default 0
	Benchmark          string    `json:"benchmark"`
}

// Validate rejects configurations the simulator must not attempt.
func (c Config) Validate() error {
	if c.StartDate.IsZero() {
		return errors.Join(ErrInvalidConfig, errors.New("start date required"))
	}
	if !c.EndDate.IsZero() && c.EndDate.Before(c.StartDate) {
		return errors.Join(ErrInvalidConfig, errors.New("end date precedes start date"))
	}
	if c.InitialCapital <= 0 {
		return errors.Join(ErrInvalidConfig, errors.New("initial capital must be positive"))
	}
	if !c.RebalanceFrequency.Valid() {
		return errors.Join(ErrInvalidConfig, errors.New("unknown rebalance frequency"))
	}
	if c.TopN < 1 || c.TopN > MaxTopN {
		return errors.Join(ErrInvalidConfig, errors.New("top_n_sectors outside [1,11]"))
	}
	return nil
}

// EquityPoint is one day of the equity curve, with the parallel
// benchmark value over the same capital base.
type EquityPoint struct {
	Date            time.Time `json:"date"`
	PortfolioValue  float64   `json:"portfolio_value"`
	BenchmarkValue  float64   `json:"benchmark_value"`
	PortfolioReturn float64   `json:"portfolio_return"` // daily, percent
	BenchmarkReturn float64   `json:"benchmark_return"` // daily, percent
}

// Allocation records one rebalance decision for attribution.
type Allocation struct {
	Date    time.Time          `json:"date"`
	Weights map[string]float64 `json:"weights"`
	Scores  map[string]float64 `json:"scores"`
}

// MonthlyReturn aggregates strategy versus benchmark by calendar month.
type MonthlyReturn struct {
	Month     string  `json:"month"` // "2006-01"
	Portfolio float64 `json:"portfolio_return"`
	Benchmark float64 `json:"benchmark_return"`
	Excess    float64 `json:"excess_return"`
}

// Stats summarizes a completed run. Percentages unless noted.
// SharpeRatio is nil when return volatility is exactly zero: undefined,
// not infinite.
type Stats struct {
	TotalReturn         float64         `json:"total_return"`
	AnnualizedReturn    float64         `json:"annualized_return"`
	BenchmarkReturn     float64         `json:"benchmark_return"`
	BenchmarkAnnualized float64         `json:"benchmark_annualized"`
	ExcessReturn        float64         `json:"excess_return"`
	Volatility          float64         `json:"volatility"`
	SharpeRatio         *float64        `json:"sharpe_ratio,omitempty"`
	MaxDrawdown         float64         `json:"max_drawdown"`
	WinRate             float64         `json:"win_rate"`
	Alpha               float64         `json:"alpha"`
	Beta                float64         `json:"beta"`
	InformationRatio    float64         `json:"information_ratio"`
	TradingDays         int             `json:"trading_days"`
	FinalValue          float64         `json:"final_portfolio_value"`
	FinalBenchmarkValue float64         `json:"final_benchmark_value"`
	MonthlyReturns      []MonthlyReturn `json:"monthly_returns"`
}

// Run is the completed artifact of one backtest invocation. Failed runs
// are never surfaced; the simulator returns an error instead of a
// partial Run.
type Run struct {
	ID          string       `json:"id"`
	Config      Config       `json:"config"`
	State       State        `json:"state"`
	EquityCurve []EquityPoint `json:"equity_curve"`
	Allocations []Allocation `json:"allocations"`
	Stats       *Stats       `json:"stats"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
}

// DataSource supplies the read-only history the simulator replays. The
// simulator never mutates what it reads, so independent runs can share
// a source concurrently.
type DataSource interface {
	// TradingDates lists the trading days in [start, end] ascending.
	// A zero end means through the latest available date.
	TradingDates(start, end time.Time) []time.Time
	// PriceOn returns the last known adjusted close on or before date.
	PriceOn(symbol string, date time.Time) (float64, bool)
	// ScoresOn returns composite scores by symbol as of date, computed
	// from information available up to that date only.
	ScoresOn(date time.Time) (map[string]float64, bool)
}
