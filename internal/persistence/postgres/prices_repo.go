package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sectorrun/sectorrun/internal/datasource"
	"github.com/sectorrun/sectorrun/internal/domain/series"
)

// PriceRepo stores sector ETF bars in the sector_prices table,
// append-only.
type PriceRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// Append inserts new bars and reports how many were new.
func (r *PriceRepo) Append(ctx context.Context, symbol string, bars []datasource.PriceBar) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin append: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, b := range bars {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO sector_prices (symbol, date, open, high, low, close, adj_close, volume)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (symbol, date) DO NOTHING`,
			symbol, series.Day(b.Date), b.Open, b.High, b.Low, b.Close, b.AdjClose, b.Volume)
		if err != nil {
			return 0, fmt.Errorf("failed to append %s bar: %w", symbol, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit append: %w", err)
	}
	return inserted, nil
}

// Bars returns stored bars in [start, end] ascending; zero bounds are
// open.
func (r *PriceRepo) Bars(ctx context.Context, symbol string, start, end time.Time) ([]datasource.PriceBar, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT date, open, high, low, close, adj_close, volume
		FROM sector_prices WHERE symbol = $1`
	args := []interface{}{symbol}
	if !start.IsZero() {
		args = append(args, start)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if !end.IsZero() {
		args = append(args, end)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY date ASC"

	var out []datasource.PriceBar
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query %s bars: %w", symbol, err)
	}
	return out, nil
}

// LatestDate returns the newest stored bar date, or zero when empty.
func (r *PriceRepo) LatestDate(ctx context.Context, symbol string) (time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var latest time.Time
	err := r.db.QueryRowxContext(ctx,
		`SELECT date FROM sector_prices WHERE symbol = $1 ORDER BY date DESC LIMIT 1`, symbol).
		Scan(&latest)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query latest %s date: %w", symbol, err)
	}
	return latest, nil
}

// SectorPrices implements datasource.PriceSource over stored history.
func (r *PriceRepo) SectorPrices(ctx context.Context, symbol string, start, end time.Time) ([]datasource.PriceBar, error) {
	return r.Bars(ctx, symbol, start, end)
}
