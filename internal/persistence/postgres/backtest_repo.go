package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sectorrun/sectorrun/internal/backtest"
	"github.com/sectorrun/sectorrun/internal/persistence"
)

// BacktestRepo stores completed runs as JSONB payloads with a few
// projected columns for listing. Runs are immutable; Save rejects
// duplicate ids.
type BacktestRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

func (r *BacktestRepo) Save(ctx context.Context, run *backtest.Run) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if run.Stats == nil {
		return fmt.Errorf("refusing to save run %s without stats", run.ID)
	}

	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode backtest run: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO backtest_runs (id, start_date, end_date, total_return, payload)
		 VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.Config.StartDate, run.Config.EndDate,
		run.Stats.TotalReturn, payload)
	if err != nil {
		return fmt.Errorf("failed to save backtest run %s: %w", run.ID, err)
	}
	return nil
}

func (r *BacktestRepo) Get(ctx context.Context, id string) (*backtest.Run, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var payload []byte
	err := r.db.QueryRowxContext(ctx,
		`SELECT payload FROM backtest_runs WHERE id = $1`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load backtest run %s: %w", id, err)
	}

	var run backtest.Run
	if err := json.Unmarshal(payload, &run); err != nil {
		return nil, fmt.Errorf("failed to decode backtest run %s: %w", id, err)
	}
	return &run, nil
}

func (r *BacktestRepo) List(ctx context.Context, limit int) ([]persistence.RunSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}

	var out []persistence.RunSummary
	err := r.db.SelectContext(ctx, &out,
		`SELECT id, start_date, end_date, total_return, created_at
		 FROM backtest_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list backtest runs: %w", err)
	}
	return out, nil
}
