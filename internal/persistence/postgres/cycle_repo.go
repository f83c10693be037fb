package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sectorrun/sectorrun/internal/domain/cycle"
	"github.com/sectorrun/sectorrun/internal/domain/series"
)

// CycleRepo stores business cycle assessments in the business_cycle
// table.
type CycleRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// Save upserts the assessment for its as-of date.
func (r *CycleRepo) Save(ctx context.Context, a cycle.Assessment) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO business_cycle (date, phase, confidence)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (date) DO UPDATE SET
			phase = EXCLUDED.phase,
			confidence = EXCLUDED.confidence`,
		series.Day(a.AsOf), string(a.Phase), a.Confidence)
	if err != nil {
		return fmt.Errorf("failed to save cycle assessment: %w", err)
	}
	return nil
}

// Latest returns the most recent assessment, or nil when none exists.
func (r *CycleRepo) Latest(ctx context.Context) (*cycle.Assessment, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var date time.Time
	var phase string
	var confidence float64
	err := r.db.QueryRowxContext(ctx,
		`SELECT date, phase, confidence FROM business_cycle ORDER BY date DESC LIMIT 1`).
		Scan(&date, &phase, &confidence)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest cycle: %w", err)
	}

	return &cycle.Assessment{
		Phase:      cycle.Phase(phase),
		Confidence: confidence,
		AsOf:       date,
	}, nil
}

// History returns the most recent assessments, newest first.
func (r *CycleRepo) History(ctx context.Context, limit int) ([]cycle.Assessment, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if limit <= 0 {
		limit = 365
	}

	rows, err := r.db.QueryxContext(ctx,
		`SELECT date, phase, confidence FROM business_cycle ORDER BY date DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycle history: %w", err)
	}
	defer rows.Close()

	var out []cycle.Assessment
	for rows.Next() {
		var date time.Time
		var phase string
		var confidence float64
		if err := rows.Scan(&date, &phase, &confidence); err != nil {
			return nil, fmt.Errorf("failed to scan cycle row: %w", err)
		}
		out = append(out, cycle.Assessment{
			Phase: cycle.Phase(phase), Confidence: confidence, AsOf: date,
		})
	}
	return out, rows.Err()
}
