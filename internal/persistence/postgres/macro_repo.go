package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sectorrun/sectorrun/internal/domain/series"
)

// MacroRepo stores macro indicator observations in the macro_series
// table. Inserts are append-only: conflicting (id, date) rows are left
// untouched, so recorded history never mutates.
type MacroRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// Append inserts new observations and reports how many were new.
func (r *MacroRepo) Append(ctx context.Context, id string, points series.Series) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin append: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, p := range points {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO macro_series (id, date, value)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (id, date) DO NOTHING`,
			id, series.Day(p.Date), p.Value)
		if err != nil {
			return 0, fmt.Errorf("failed to append %s observation: %w", id, err)
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

// Series returns the stored observations in [start, end] ascending.
// Zero bounds are open.
func (r *MacroRepo) Series(ctx context.Context, id string, start, end time.Time) (series.Series, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT date, value FROM macro_series WHERE id = $1`
	args := []interface{}{id}
	if !start.IsZero() {
		args = append(args, start)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if !end.IsZero() {
		args = append(args, end)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY date ASC"

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s series: %w", id, err)
	}
	defer rows.Close()

	var out series.Series
	for rows.Next() {
		var p series.Point
		if err := rows.Scan(&p.Date, &p.Value); err != nil {
			return nil, fmt.Errorf("failed to scan %s observation: %w", id, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// LatestDate returns the most recent observation date, or zero when the
// series is empty.
func (r *MacroRepo) LatestDate(ctx context.Context, id string) (time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var latest time.Time
	err := r.db.QueryRowxContext(ctx,
		`SELECT date FROM macro_series WHERE id = $1 ORDER BY date DESC LIMIT 1`, id).
		Scan(&latest)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query latest %s date: %w", id, err)
	}
	return latest, nil
}

// IndicatorSeries implements datasource.MacroSource over the stored
// history, so the engine can be fed straight from the database.
func (r *MacroRepo) IndicatorSeries(ctx context.Context, id string, start, end time.Time) (series.Series, error) {
	return r.Series(ctx, id, start, end)
}
