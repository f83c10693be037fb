package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sectorrun/sectorrun/internal/domain/cycle"
	"github.com/sectorrun/sectorrun/internal/domain/indicator"
	"github.com/sectorrun/sectorrun/internal/domain/scoring"
	"github.com/sectorrun/sectorrun/internal/domain/sectors"
)

// Alert flags an indicator whose percentile reading crossed the
// configured warn or critical bound in either tail.
type Alert struct {
	IndicatorID string  `json:"indicator_id"`
	Name        string  `json:"name"`
	Percentile  float64 `json:"percentile"`
	Severity    string  `json:"severity"` // "warning" or "critical"
}

// Mover is a sector's one-day price change.
type Mover struct {
	Symbol    string  `json:"symbol"`
	ChangePct float64 `json:"change_pct"`
}

// DashboardSnapshot is the one-call read the dashboard renders: the
// current cycle read, the ranked cross-section, normalized indicators,
// the day's biggest movers, and any percentile alerts.
type DashboardSnapshot struct {
	AsOf       time.Time                     `json:"as_of"`
	Cycle      cycle.Assessment              `json:"business_cycle"`
	Scores     []scoring.Score               `json:"sector_scores"`
	Indicators map[string]indicator.Snapshot `json:"indicators"`
	Gainers    []Mover                       `json:"top_gainers"`
	Losers     []Mover                       `json:"top_losers"`
	Alerts     []Alert                       `json:"alerts"`
}

// ComputeScores builds the full cross-section as of a date: one
// component set per sector, combined and ranked. The cycle assessment
// used for the cycle component is returned alongside. When a score
// repository is attached the ranked cross-section is persisted.
func (e *Engine) ComputeScores(ctx context.Context, asOf time.Time) ([]scoring.Score, cycle.Assessment, error) {
	return e.scoreCrossSection(ctx, asOf, e.Snapshots(ctx, asOf))
}

func (e *Engine) scoreCrossSection(ctx context.Context, asOf time.Time, snaps map[string]indicator.Snapshot) ([]scoring.Score, cycle.Assessment, error) {
	bySignal, byCondition := e.roleMaps(snaps)

	var lastKnown cycle.Phase
	if e.repos.Cycle != nil {
		if prev, err := e.repos.Cycle.Latest(ctx); err == nil && prev != nil {
			lastKnown = prev.Phase
		}
	}
	assessment := cycle.NewClassifier(e.cfg.CycleRules).Classify(bySignal, asOf, lastKnown)

	cycleScores := scoring.CycleScores(assessment.Phase)
	conditions := scoring.DeriveConditions(byCondition)

	components := make([]scoring.Components, 0, len(sectors.Symbols()))
	for _, symbol := range sectors.Symbols() {
		closes, err := e.sectorCloses(ctx, symbol, asOf)
		if err != nil {
			return nil, cycle.Assessment{}, err
		}
		components = append(components, scoring.Components{
			Symbol:           symbol,
			Date:             asOf,
			ML:               e.mlScore(ctx, symbol, asOf),
			Cycle:            cycleScores[symbol],
			Momentum:         scoring.MomentumScore(closes.Values(), e.cfg.Momentum),
			MacroSensitivity: scoring.MacroSensitivityScore(symbol, conditions),
		})
	}

	ranked, err := scoring.RankAll(components, e.cfg.Weights, e.cfg.Cutoffs)
	if err != nil {
		return nil, cycle.Assessment{}, fmt.Errorf("failed to rank sectors: %w", err)
	}

	if e.repos.Scores != nil {
		if err := e.repos.Scores.Save(ctx, asOf, ranked); err != nil {
			return nil, cycle.Assessment{}, fmt.Errorf("failed to persist scores: %w", err)
		}
	}
	if e.repos.Cycle != nil {
		if err := e.repos.Cycle.Save(ctx, assessment); err != nil {
			return nil, cycle.Assessment{}, fmt.Errorf("failed to persist cycle assessment: %w", err)
		}
	}
	return ranked, assessment, nil
}

// mlScore reads the external model score for a sector, degrading to the
// neutral midpoint when the model has nothing for that date.
func (e *Engine) mlScore(ctx context.Context, symbol string, asOf time.Time) float64 {
	if e.data.ML == nil {
		return 50
	}
	v, err := e.data.ML.MLScore(ctx, symbol, asOf)
	if err != nil {
		log.Debug().Err(err).Str("symbol", symbol).Msg("ml score unavailable, using neutral")
		return 50
	}
	if v < 0 || v > 100 {
		log.Warn().Float64("score", v).Str("symbol", symbol).Msg("ml score out of range, using neutral")
		return 50
	}
	return v
}

// ComputeDashboardSnapshot assembles the full dashboard read as of a
// date. A zero asOf means now.
func (e *Engine) ComputeDashboardSnapshot(ctx context.Context, asOf time.Time) (*DashboardSnapshot, error) {
	if asOf.IsZero() {
		asOf = e.now()
	}

	snaps := e.Snapshots(ctx, asOf)
	scores, assessment, err := e.scoreCrossSection(ctx, asOf, snaps)
	if err != nil {
		return nil, err
	}

	gainers, losers := e.topMovers(ctx, asOf, 3)

	return &DashboardSnapshot{
		AsOf:       asOf,
		Cycle:      assessment,
		Scores:     scores,
		Indicators: snaps,
		Gainers:    gainers,
		Losers:     losers,
		Alerts:     e.alerts(snaps),
	}, nil
}

// topMovers ranks the universe by one-day price change as of a date.
// Sectors without two prints by then are left out.
func (e *Engine) topMovers(ctx context.Context, asOf time.Time, n int) (gainers, losers []Mover) {
	var movers []Mover
	for _, symbol := range sectors.Symbols() {
		closes, err := e.sectorCloses(ctx, symbol, asOf)
		if err != nil || len(closes) < 2 {
			continue
		}
		prev := closes[len(closes)-2].Value
		last := closes[len(closes)-1].Value
		if prev == 0 {
			continue
		}
		movers = append(movers, Mover{
			Symbol:    symbol,
			ChangePct: (last - prev) / prev * 100,
		})
	}
	sort.Slice(movers, func(i, j int) bool {
		if movers[i].ChangePct != movers[j].ChangePct {
			return movers[i].ChangePct > movers[j].ChangePct
		}
		return movers[i].Symbol < movers[j].Symbol
	})
	if len(movers) == 0 {
		return nil, nil
	}
	top := n
	if top > len(movers) {
		top = len(movers)
	}
	gainers = append(gainers, movers[:top]...)
	for i := 0; i < top; i++ {
		losers = append(losers, movers[len(movers)-1-i])
	}
	return gainers, losers
}

// alerts scans snapshots for percentile readings in either extreme
// tail. Critical outranks warning; both bounds apply symmetrically.
func (e *Engine) alerts(snaps map[string]indicator.Snapshot) []Alert {
	var out []Alert
	for _, spec := range e.cfg.Indicators {
		snap, ok := snaps[spec.ID]
		if !ok || !snap.Available {
			continue
		}
		tail := snap.Percentile
		if tail < 50 {
			tail = 100 - tail
		}
		severity := ""
		switch {
		case tail >= e.cfg.Alerts.CriticalPercentile:
			severity = "critical"
		case tail >= e.cfg.Alerts.WarnPercentile:
			severity = "warning"
		default:
			continue
		}
		out = append(out, Alert{
			IndicatorID: spec.ID,
			Name:        spec.Name,
			Percentile:  snap.Percentile,
			Severity:    severity,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IndicatorID < out[j].IndicatorID })
	return out
}

// Breakdown is the per-sector score decomposition: the weighted
// contribution of each component next to its raw value.
type Breakdown struct {
	Score         scoring.Score      `json:"score"`
	Weights       scoring.Weights    `json:"weights"`
	Contributions map[string]float64 `json:"contributions"`
}

// ScoreBreakdown explains one sector's composite as of a date.
func (e *Engine) ScoreBreakdown(ctx context.Context, symbol string, asOf time.Time) (*Breakdown, error) {
	if _, ok := sectors.Lookup(symbol); !ok {
		return nil, fmt.Errorf("unknown sector symbol %s", symbol)
	}
	if asOf.IsZero() {
		asOf = e.now()
	}

	scores, _, err := e.ComputeScores(ctx, asOf)
	if err != nil {
		return nil, err
	}
	for _, s := range scores {
		if s.Symbol != symbol {
			continue
		}
		w := e.cfg.Weights
		return &Breakdown{
			Score:   s,
			Weights: w,
			Contributions: map[string]float64{
				"ml_score":          w.ML * s.ML,
				"cycle_score":       w.Cycle * s.Cycle,
				"momentum_score":    w.Momentum * s.Momentum,
				"macro_sensitivity": w.MacroSensitivity * s.MacroSensitivity,
			},
		}, nil
	}
	return nil, fmt.Errorf("no score computed for %s", symbol)
}
