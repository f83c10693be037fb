// Package application orchestrates the domain packages into the
// operations the HTTP layer and CLI expose: dashboard snapshots,
// sensitivity heatmaps, score breakdowns, and backtests. It owns no
// domain logic of its own; it loads history through the datasource
// boundary, runs the pure computations, and persists results when
// repositories are attached.
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sectorrun/sectorrun/internal/config"
	"github.com/sectorrun/sectorrun/internal/datasource"
	"github.com/sectorrun/sectorrun/internal/domain/cycle"
	"github.com/sectorrun/sectorrun/internal/domain/indicator"
	"github.com/sectorrun/sectorrun/internal/domain/series"
	"github.com/sectorrun/sectorrun/internal/persistence"
)

// Repos is the optional persistence attachment. Any nil repository
// simply disables that write path; the engine computes identically
// either way.
type Repos struct {
	Scores    persistence.ScoreRepo
	Cycle     persistence.CycleRepo
	Backtests persistence.BacktestRepo
}

// Engine is the application facade. It is safe for concurrent use: all
// state is read-only after construction.
type Engine struct {
	cfg   *config.Config
	data  datasource.Bundle
	repos Repos
	now   func() time.Time
}

// New builds an engine over the configured indicator catalog and the
// given data collaborators.
func New(cfg *config.Config, data datasource.Bundle, repos Repos) *Engine {
	return &Engine{cfg: cfg, data: data, repos: repos, now: time.Now}
}

// SetClock overrides the wall clock, for tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// loadIndicators fetches full history for every configured indicator.
// A failed fetch degrades to an empty series for that indicator rather
// than failing the whole read; normalization marks it not-available.
func (e *Engine) loadIndicators(ctx context.Context, through time.Time) []indicator.Indicator {
	out := make([]indicator.Indicator, 0, len(e.cfg.Indicators))
	for _, spec := range e.cfg.Indicators {
		s, err := e.data.Macro.IndicatorSeries(ctx, spec.ID, time.Time{}, through)
		if err != nil {
			log.Warn().Err(err).Str("indicator", spec.ID).Msg("indicator history unavailable")
			s = nil
		}
		out = append(out, indicator.Indicator{
			ID:       spec.ID,
			Name:     spec.Name,
			Category: spec.Category,
			Series:   s,
		})
	}
	return out
}

// Snapshots normalizes every configured indicator as of a date, keyed
// by indicator id.
func (e *Engine) Snapshots(ctx context.Context, asOf time.Time) map[string]indicator.Snapshot {
	inds := e.loadIndicators(ctx, asOf)
	return indicator.NormalizeAll(inds, asOf, e.cfg.ThresholdOverrides(), e.cfg.DefaultThresholds)
}

// roleMaps rekeys id-keyed snapshots by the cycle signal role and the
// macro condition role each indicator is configured to feed.
func (e *Engine) roleMaps(snaps map[string]indicator.Snapshot) (bySignal, byCondition map[string]indicator.Snapshot) {
	bySignal = make(map[string]indicator.Snapshot)
	byCondition = make(map[string]indicator.Snapshot)
	for _, spec := range e.cfg.Indicators {
		snap, ok := snaps[spec.ID]
		if !ok {
			continue
		}
		if spec.CycleSignal != "" {
			bySignal[spec.CycleSignal] = snap
		}
		if spec.Condition != "" {
			byCondition[spec.Condition] = snap
		}
	}
	return bySignal, byCondition
}

// ClassifyCycle normalizes indicators as of a date and runs the phase
// classifier, seeding the last known phase from storage when a cycle
// repository is attached.
func (e *Engine) ClassifyCycle(ctx context.Context, asOf time.Time) (cycle.Assessment, error) {
	snaps := e.Snapshots(ctx, asOf)
	bySignal, _ := e.roleMaps(snaps)

	var lastKnown cycle.Phase
	if e.repos.Cycle != nil {
		prev, err := e.repos.Cycle.Latest(ctx)
		if err != nil {
			return cycle.Assessment{}, fmt.Errorf("failed to load last cycle assessment: %w", err)
		}
		if prev != nil {
			lastKnown = prev.Phase
		}
	}

	assessment := cycle.NewClassifier(e.cfg.CycleRules).Classify(bySignal, asOf, lastKnown)

	if e.repos.Cycle != nil {
		if err := e.repos.Cycle.Save(ctx, assessment); err != nil {
			return cycle.Assessment{}, fmt.Errorf("failed to persist cycle assessment: %w", err)
		}
	}
	return assessment, nil
}

// sectorCloses loads adjusted close history for one symbol through a
// date as a value series.
func (e *Engine) sectorCloses(ctx context.Context, symbol string, through time.Time) (series.Series, error) {
	bars, err := e.data.Prices.SectorPrices(ctx, symbol, time.Time{}, through)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s price history: %w", symbol, err)
	}
	return datasource.AdjCloseSeries(bars), nil
}
