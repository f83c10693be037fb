package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sectorrun/sectorrun/internal/domain/scoring"
	"github.com/sectorrun/sectorrun/internal/domain/series"
)

// ScoreRepo stores per-date sector score cross-sections.
type ScoreRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

type scoreRow struct {
	Date             time.Time `db:"date"`
	Symbol           string    `db:"symbol"`
	Composite        float64   `db:"composite_score"`
	ML               float64   `db:"ml_score"`
	Cycle            float64   `db:"cycle_score"`
	Momentum         float64   `db:"momentum_score"`
	MacroSensitivity float64   `db:"macro_sensitivity_score"`
	Rank             int       `db:"rank"`
	Recommendation   string    `db:"recommendation"`
}

func (row scoreRow) toScore() scoring.Score {
	return scoring.Score{
		Components: scoring.Components{
			Symbol:           row.Symbol,
			Date:             row.Date,
			ML:               row.ML,
			Cycle:            row.Cycle,
			Momentum:         row.Momentum,
			MacroSensitivity: row.MacroSensitivity,
		},
		Composite:      row.Composite,
		Rank:           row.Rank,
		Recommendation: scoring.Recommendation(row.Recommendation),
	}
}

// Save upserts the cross-section for one date. Score rows are derived
// data and may be recomputed, so unlike raw history they replace on
// conflict.
func (r *ScoreRepo) Save(ctx context.Context, date time.Time, scores []scoring.Score) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin score save: %w", err)
	}
	defer tx.Rollback()

	for _, s := range scores {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sector_scores
				(date, symbol, composite_score, ml_score, cycle_score,
				 momentum_score, macro_sensitivity_score, rank, recommendation)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (date, symbol) DO UPDATE SET
				composite_score = EXCLUDED.composite_score,
				ml_score = EXCLUDED.ml_score,
				cycle_score = EXCLUDED.cycle_score,
				momentum_score = EXCLUDED.momentum_score,
				macro_sensitivity_score = EXCLUDED.macro_sensitivity_score,
				rank = EXCLUDED.rank,
				recommendation = EXCLUDED.recommendation`,
			series.Day(date), s.Symbol, s.Composite, s.ML, s.Cycle,
			s.Momentum, s.MacroSensitivity, s.Rank, string(s.Recommendation))
		if err != nil {
			return fmt.Errorf("failed to save score for %s: %w", s.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit score save: %w", err)
	}
	return nil
}

// Rankings returns the cross-section for a date ordered by rank.
func (r *ScoreRepo) Rankings(ctx context.Context, date time.Time) ([]scoring.Score, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var rows []scoreRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT date, symbol, composite_score, ml_score, cycle_score,
		        momentum_score, macro_sensitivity_score, rank, recommendation
		 FROM sector_scores WHERE date = $1 ORDER BY rank ASC`, series.Day(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query rankings: %w", err)
	}

	out := make([]scoring.Score, len(rows))
	for i, row := range rows {
		out[i] = row.toScore()
	}
	return out, nil
}

// LatestDate returns the most recent scored date, or zero when empty.
func (r *ScoreRepo) LatestDate(ctx context.Context) (time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var latest time.Time
	err := r.db.QueryRowxContext(ctx,
		`SELECT date FROM sector_scores ORDER BY date DESC LIMIT 1`).Scan(&latest)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query latest score date: %w", err)
	}
	return latest, nil
}

// History returns all scores in [start, end] ascending by date then
// rank.
func (r *ScoreRepo) History(ctx context.Context, start, end time.Time) ([]scoring.Score, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var rows []scoreRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT date, symbol, composite_score, ml_score, cycle_score,
		        momentum_score, macro_sensitivity_score, rank, recommendation
		 FROM sector_scores WHERE date >= $1 AND date <= $2
		 ORDER BY date ASC, rank ASC`, series.Day(start), series.Day(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query score history: %w", err)
	}

	out := make([]scoring.Score, len(rows))
	for i, row := range rows {
		out[i] = row.toScore()
	}
	return out, nil
}
