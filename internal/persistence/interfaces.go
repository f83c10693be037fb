// Package persistence defines the storage contracts for the engine's
// durable state: append-only macro and price history, computed scores,
// cycle assessments, and completed backtest runs. Core computations
// never write through these interfaces; persistence happens around the
// engine, not inside it.
package persistence

import (
	"context"
	"time"

	"github.com/sectorrun/sectorrun/internal/backtest"
	"github.com/sectorrun/sectorrun/internal/datasource"
	"github.com/sectorrun/sectorrun/internal/domain/cycle"
	"github.com/sectorrun/sectorrun/internal/domain/scoring"
	"github.com/sectorrun/sectorrun/internal/domain/series"
)

// MacroRepo stores macro indicator observations. History is
// append-only: re-inserting an existing (id, date) is a no-op, never an
// update.
type MacroRepo interface {
	Append(ctx context.Context, id string, points series.Series) (int, error)
	Series(ctx context.Context, id string, start, end time.Time) (series.Series, error)
	LatestDate(ctx context.Context, id string) (time.Time, error)
}

// PriceRepo stores sector ETF price bars, append-only like MacroRepo.
type PriceRepo interface {
	Append(ctx context.Context, symbol string, bars []datasource.PriceBar) (int, error)
	Bars(ctx context.Context, symbol string, start, end time.Time) ([]datasource.PriceBar, error)
	LatestDate(ctx context.Context, symbol string) (time.Time, error)
}

// ScoreRepo stores computed sector scores per date.
type ScoreRepo interface {
	Save(ctx context.Context, date time.Time, scores []scoring.Score) error
	Rankings(ctx context.Context, date time.Time) ([]scoring.Score, error)
	LatestDate(ctx context.Context) (time.Time, error)
	// History returns scores for all dates in [start, end] ascending.
	History(ctx context.Context, start, end time.Time) ([]scoring.Score, error)
}

// CycleRepo stores business cycle assessments per date.
type CycleRepo interface {
	Save(ctx context.Context, a cycle.Assessment) error
	Latest(ctx context.Context) (*cycle.Assessment, error)
	History(ctx context.Context, limit int) ([]cycle.Assessment, error)
}

// BacktestRepo stores completed runs keyed by generated id. Runs are
// immutable after completion; there is no update path.
type BacktestRepo interface {
	Save(ctx context.Context, run *backtest.Run) error
	Get(ctx context.Context, id string) (*backtest.Run, error)
	List(ctx context.Context, limit int) ([]RunSummary, error)
}

// RunSummary is the listing projection of a stored backtest run.
type RunSummary struct {
	ID          string    `json:"id" db:"id"`
	StartDate   time.Time `json:"start_date" db:"start_date"`
	EndDate     time.Time `json:"end_date" db:"end_date"`
	TotalReturn float64   `json:"total_return" db:"total_return"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
