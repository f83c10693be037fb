package backtest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Runner replays historical rebalancing decisions against a read-only
// data source. Each Run call is a pure function of (source, config), so
// concurrent runs over the same source need no locking.
type Runner struct {
	source DataSource
	now    func() time.Time // injectable for testing
}

// NewRunner creates a simulator over the given history.
func NewRunner(source DataSource) *Runner {
	return &Runner{source: source, now: time.Now}
}

// SetClock overrides the wall clock (for testing).
func (r *Runner) SetClock(now func() time.Time) {
	r.now = now
}

// Run executes the simulation. Configuration errors are rejected before
// any computation; an empty date range fails fast; context cancellation
// is honored between rebalance periods and discards the partial run.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dates := r.source.TradingDates(cfg.StartDate, cfg.EndDate)
	if len(dates) == 0 {
		return nil, fmt.Errorf("%w: %s to %s", ErrNoData,
			cfg.StartDate.Format("2006-01-02"), endLabel(cfg.EndDate))
	}

	benchmark := cfg.Benchmark
	if benchmark == "" {
		benchmark = "SPY"
	}
	if _, ok := r.source.PriceOn(benchmark, dates[0]); !ok {
		return nil, fmt.Errorf("%w: no benchmark prices for %s", ErrNoData, benchmark)
	}

	run := &Run{
		ID:        uuid.NewString(),
		Config:    cfg,
		State:     StateRunning,
		StartedAt: r.now(),
	}

	rebalance := RebalanceDates(dates, cfg.RebalanceFrequency)

	portfolio := cfg.InitialCapital
	benchValue := cfg.InitialCapital
	run.EquityCurve = append(run.EquityCurve, EquityPoint{
		Date:           dates[0],
		PortfolioValue: portfolio,
		BenchmarkValue: benchValue,
	})

	var weights map[string]float64
	selected := 0

	for i, d := range dates {
		if i > 0 {
			prev := dates[i-1]
			dayReturn := r.basketReturn(weights, prev, d)
			benchReturn := r.singleReturn(benchmark, prev, d)

			portfolio *= 1 + dayReturn
			benchValue *= 1 + benchReturn
			run.EquityCurve = append(run.EquityCurve, EquityPoint{
				Date:            d,
				PortfolioValue:  portfolio,
				BenchmarkValue:  benchValue,
				PortfolioReturn: dayReturn * 100,
				BenchmarkReturn: benchReturn * 100,
			})
		}

		if !rebalance[d] {
			continue
		}

		// Cancellation checkpoint: abort cleanly between periods so no
		// partially computed run escapes.
		if err := ctx.Err(); err != nil {
			run.State = StateFailed
			return nil, fmt.Errorf("backtest aborted: %w", err)
		}

		scores, ok := r.source.ScoresOn(d)
		if !ok || len(scores) == 0 {
			// Carry the prior basket through a score gap. If no
			// rebalance ever resolves, the run fails after the loop.
			continue
		}

		basket := selectTopN(scores, cfg.TopN)
		weights = equalWeights(basket)
		selected++
		run.Allocations = append(run.Allocations, Allocation{
			Date:    d,
			Weights: weights,
			Scores:  pick(scores, basket),
		})
	}

	if selected == 0 {
		run.State = StateFailed
		return nil, fmt.Errorf("%w: no composite scores in range", ErrNoData)
	}

	run.Stats = ComputeStats(run.EquityCurve, cfg.InitialCapital, cfg.RiskFreeRate)
	run.State = StateCompleted
	run.FinishedAt = r.now()

	log.Debug().
		Str("run_id", run.ID).
		Int("trading_days", len(dates)).
		Int("rebalances", selected).
		Float64("final_value", portfolio).
		Msg("backtest completed")

	return run, nil
}

// basketReturn computes the held basket's return from prev to d using
// forward-filled prices. A sector with no quote change contributes its
// weight at zero return.
func (r *Runner) basketReturn(weights map[string]float64, prev, d time.Time) float64 {
	total := 0.0
	for symbol, w := range weights {
		total += w * r.singleReturn(symbol, prev, d)
	}
	return total
}

func (r *Runner) singleReturn(symbol string, prev, d time.Time) float64 {
	p0, ok0 := r.source.PriceOn(symbol, prev)
	p1, ok1 := r.source.PriceOn(symbol, d)
	if !ok0 || !ok1 || p0 == 0 {
		return 0
	}
	return p1/p0 - 1
}

// selectTopN ranks symbols by score descending with ties broken by
// symbol ascending, and keeps the first n.
func selectTopN(scores map[string]float64, n int) []string {
	symbols := make([]string, 0, len(scores))
	for s := range scores {
		symbols = append(symbols, s)
	}
	sort.Slice(symbols, func(i, j int) bool {
		if scores[symbols[i]] != scores[symbols[j]] {
			return scores[symbols[i]] > scores[symbols[j]]
		}
		return symbols[i] < symbols[j]
	})
	if n > len(symbols) {
		n = len(symbols)
	}
	return symbols[:n]
}

func equalWeights(basket []string) map[string]float64 {
	w := 1.0 / float64(len(basket))
	out := make(map[string]float64, len(basket))
	for _, s := range basket {
		out[s] = w
	}
	return out
}

func pick(scores map[string]float64, basket []string) map[string]float64 {
	out := make(map[string]float64, len(basket))
	for _, s := range basket {
		out[s] = scores[s]
	}
	return out
}

func endLabel(end time.Time) string {
	if end.IsZero() {
		return "latest"
	}
	return end.Format("2006-01-02")
}
