package application

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sectorrun/sectorrun/internal/backtest"
	"github.com/sectorrun/sectorrun/internal/domain/cycle"
	"github.com/sectorrun/sectorrun/internal/domain/indicator"
	"github.com/sectorrun/sectorrun/internal/domain/scoring"
	"github.com/sectorrun/sectorrun/internal/domain/sectors"
	"github.com/sectorrun/sectorrun/internal/domain/series"
)

// DefaultInitialCapital is applied when a backtest request leaves the
// capital base unset.
const DefaultInitialCapital = 100_000

// RunBacktest fills request defaults, replays history through the
// simulator, and persists the completed run when a backtest repository
// is attached.
func (e *Engine) RunBacktest(ctx context.Context, cfg backtest.Config) (*backtest.Run, error) {
	if cfg.Benchmark == "" {
		cfg.Benchmark = sectors.BenchmarkSymbol
	}
	if cfg.InitialCapital == 0 {
		cfg.InitialCapital = DefaultInitialCapital
	}
	if cfg.RiskFreeRate == 0 {
		cfg.RiskFreeRate = e.cfg.Backtest.RiskFreeRate
	}
	if cfg.TopN == 0 {
		cfg.TopN = 3
	}
	if cfg.RebalanceFrequency == "" {
		cfg.RebalanceFrequency = backtest.FrequencyMonthly
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	source, err := e.newHistorySource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	runner := backtest.NewRunner(source)
	runner.SetClock(e.now)
	run, err := runner.Run(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if e.repos.Backtests != nil {
		if err := e.repos.Backtests.Save(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to persist backtest run: %w", err)
		}
	}
	log.Info().
		Str("run_id", run.ID).
		Float64("total_return", run.Stats.TotalReturn).
		Int("trading_days", run.Stats.TradingDays).
		Msg("backtest completed")
	return run, nil
}

// historySource replays stored history for the simulator. All price and
// indicator data is loaded once up front; scoring is recomputed per
// rebalance date from information available through that date only.
type historySource struct {
	engine     *Engine
	ctx        context.Context
	prices     map[string]series.Series
	dates      []time.Time
	indicators []indicator.Indicator
	lastPhase  cycle.Phase
	scoreCache map[time.Time]map[string]float64
}

func (e *Engine) newHistorySource(ctx context.Context, cfg backtest.Config) (*historySource, error) {
	symbols := append(sectors.Symbols(), cfg.Benchmark)
	prices := make(map[string]series.Series, len(symbols))
	through := cfg.EndDate
	if through.IsZero() {
		through = e.now()
	}
	for _, symbol := range symbols {
		closes, err := e.sectorCloses(ctx, symbol, through)
		if err != nil {
			return nil, err
		}
		prices[symbol] = closes
	}

	bench := prices[cfg.Benchmark]
	dates := make([]time.Time, 0, len(bench))
	for _, p := range bench {
		dates = append(dates, p.Date)
	}

	return &historySource{
		engine:     e,
		ctx:        ctx,
		prices:     prices,
		dates:      dates,
		indicators: e.loadIndicators(ctx, through),
		scoreCache: make(map[time.Time]map[string]float64),
	}, nil
}

func (s *historySource) TradingDates(start, end time.Time) []time.Time {
	var out []time.Time
	for _, d := range s.dates {
		if d.Before(series.Day(start)) {
			continue
		}
		if !end.IsZero() && d.After(series.Day(end)) {
			break
		}
		out = append(out, d)
	}
	return out
}

func (s *historySource) PriceOn(symbol string, date time.Time) (float64, bool) {
	p, ok := s.prices[symbol].LastOn(date)
	if !ok {
		return 0, false
	}
	return p.Value, true
}

// ScoresOn recomputes the composite cross-section as of a date. The
// cycle phase carries forward between calls the same way the live
// classifier carries its last known phase.
func (s *historySource) ScoresOn(date time.Time) (map[string]float64, bool) {
	day := series.Day(date)
	if cached, ok := s.scoreCache[day]; ok {
		return cached, len(cached) > 0
	}

	e := s.engine
	snaps := indicator.NormalizeAll(s.indicators, day, e.cfg.ThresholdOverrides(), e.cfg.DefaultThresholds)
	bySignal, byCondition := e.roleMaps(snaps)

	assessment := cycle.NewClassifier(e.cfg.CycleRules).Classify(bySignal, day, s.lastPhase)
	s.lastPhase = assessment.Phase

	cycleScores := scoring.CycleScores(assessment.Phase)
	conditions := scoring.DeriveConditions(byCondition)

	out := make(map[string]float64)
	for _, symbol := range sectors.Symbols() {
		closes := s.prices[symbol].Through(day)
		if len(closes) == 0 {
			continue
		}
		c := scoring.Components{
			Symbol:           symbol,
			Date:             day,
			ML:               e.mlScore(s.ctx, symbol, day),
			Cycle:            cycleScores[symbol],
			Momentum:         scoring.MomentumScore(closes.Values(), e.cfg.Momentum),
			MacroSensitivity: scoring.MacroSensitivityScore(symbol, conditions),
		}
		composite, err := scoring.Combine(c, e.cfg.Weights)
		if err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("skipping sector in backtest scoring")
			continue
		}
		out[symbol] = composite
	}

	s.scoreCache[day] = out
	return out, len(out) > 0
}
