package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// Store bundles the PostgreSQL-backed repositories over one connection
// pool.
type Store struct {
	db      *sqlx.DB
	timeout time.Duration

	Macro    *MacroRepo
	Prices   *PriceRepo
	Scores   *ScoreRepo
	Cycle    *CycleRepo
	Backtest *BacktestRepo
}

// Connect opens the database and wires the repositories. The DSN comes
// from the embedding service; no default credentials live in code.
func Connect(dsn string, timeout time.Duration) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	s := &Store{db: db, timeout: timeout}
	s.Macro = &MacroRepo{db: db, timeout: timeout}
	s.Prices = &PriceRepo{db: db, timeout: timeout}
	s.Scores = &ScoreRepo{db: db, timeout: timeout}
	s.Cycle = &CycleRepo{db: db, timeout: timeout}
	s.Backtest = &BacktestRepo{db: db, timeout: timeout}
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the schema if missing. Tables are append-oriented;
// macro and price history rows are never updated once written.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS macro_series (
			id         TEXT NOT NULL,
			date       DATE NOT NULL,
			value      DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (id, date)
		)`,
		`CREATE TABLE IF NOT EXISTS sector_prices (
			symbol     TEXT NOT NULL,
			date       DATE NOT NULL,
			open       DOUBLE PRECISION NOT NULL,
			high       DOUBLE PRECISION NOT NULL,
			low        DOUBLE PRECISION NOT NULL,
			close      DOUBLE PRECISION NOT NULL,
			adj_close  DOUBLE PRECISION NOT NULL,
			volume     BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (symbol, date)
		)`,
		`CREATE TABLE IF NOT EXISTS sector_scores (
			date            DATE NOT NULL,
			symbol          TEXT NOT NULL,
			composite_score DOUBLE PRECISION NOT NULL,
			ml_score        DOUBLE PRECISION NOT NULL,
			cycle_score     DOUBLE PRECISION NOT NULL,
			momentum_score  DOUBLE PRECISION NOT NULL,
			macro_sensitivity_score DOUBLE PRECISION NOT NULL,
			rank            INT NOT NULL,
			recommendation  TEXT NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (date, symbol)
		)`,
		`CREATE TABLE IF NOT EXISTS business_cycle (
			date       DATE PRIMARY KEY,
			phase      TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS backtest_runs (
			id           TEXT PRIMARY KEY,
			start_date   DATE NOT NULL,
			end_date     DATE NOT NULL,
			total_return DOUBLE PRECISION NOT NULL,
			payload      JSONB NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	log.Debug().Msg("postgres schema ready")
	return nil
}
