// Package datasource declares the boundary to the external data
// collaborators. The engine consumes ordered history through these
// interfaces and never fetches, caches, or persists on its own.
package datasource

import (
	"context"
	"time"

	"github.com/sectorrun/sectorrun/internal/domain/series"
)

// PriceBar is one day of a sector ETF's price history.
type PriceBar struct {
	Date     time.Time `json:"date" db:"date"`
	Open     float64   `json:"open" db:"open"`
	High     float64   `json:"high" db:"high"`
	Low      float64   `json:"low" db:"low"`
	Close    float64   `json:"close" db:"close"`
	AdjClose float64   `json:"adj_close" db:"adj_close"`
	Volume   int64     `json:"volume" db:"volume"`
}

// MacroSource supplies macro indicator history, ordered ascending by
// date. A zero start or end means unbounded on that side.
type MacroSource interface {
	IndicatorSeries(ctx context.Context, id string, start, end time.Time) (series.Series, error)
}

// PriceSource supplies sector ETF price history, ordered ascending.
type PriceSource interface {
	SectorPrices(ctx context.Context, symbol string, start, end time.Time) ([]PriceBar, error)
}

// MLScoreSource supplies the externally computed predictive model
// score for a sector on a date, on the [0,100] scale.
type MLScoreSource interface {
	MLScore(ctx context.Context, symbol string, date time.Time) (float64, error)
}

// Bundle groups the three collaborator interfaces the engine needs.
type Bundle struct {
	Macro  MacroSource
	Prices PriceSource
	ML     MLScoreSource
}

// AdjCloseSeries projects price bars onto an adjusted close series.
func AdjCloseSeries(bars []PriceBar) series.Series {
	out := make(series.Series, len(bars))
	for i, b := range bars {
		out[i] = series.Point{Date: b.Date, Value: b.AdjClose}
	}
	return out
}
