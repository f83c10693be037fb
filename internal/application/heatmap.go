package application

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sectorrun/sectorrun/internal/domain/sensitivity"
	"github.com/sectorrun/sectorrun/internal/domain/series"
	"github.com/sectorrun/sectorrun/internal/domain/sectors"
)

// ComputeHeatmap estimates the indicator-by-sector sensitivity matrix
// from recent history. A zero asOf means now; the lookback window comes
// from configuration.
func (e *Engine) ComputeHeatmap(ctx context.Context, asOf time.Time) (*sensitivity.Matrix, error) {
	if asOf.IsZero() {
		asOf = e.now()
	}

	indicatorSeries := make(map[string]series.Series, len(e.cfg.Indicators))
	for _, ind := range e.loadIndicators(ctx, asOf) {
		if len(ind.Series) > 0 {
			indicatorSeries[ind.ID] = ind.Series
		}
	}

	sectorPrices := make(map[string]series.Series, len(sectors.Symbols()))
	for _, symbol := range sectors.Symbols() {
		closes, err := e.sectorCloses(ctx, symbol, asOf)
		if err != nil {
			return nil, err
		}
		if len(closes) > 0 {
			sectorPrices[symbol] = closes
		}
	}

	est := sensitivity.NewEstimator(e.cfg.Sensitivity.MinSamples)
	matrix := est.Estimate(indicatorSeries, sectorPrices, asOf, e.cfg.Sensitivity.LookbackDays)
	log.Debug().
		Int("indicators", len(matrix.Indicators)).
		Int("sectors", len(matrix.Sectors)).
		Time("as_of", asOf).
		Msg("sensitivity heatmap computed")
	return matrix, nil
}
