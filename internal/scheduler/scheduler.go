// Package scheduler runs the daily data refresh: pull new macro
// observations and price bars from the live collaborators, append them
// to storage, then recompute and persist the score cross-section.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/sectorrun/sectorrun/internal/application"
	"github.com/sectorrun/sectorrun/internal/config"
	"github.com/sectorrun/sectorrun/internal/datasource"
	"github.com/sectorrun/sectorrun/internal/domain/sectors"
	"github.com/sectorrun/sectorrun/internal/persistence"
)

// DefaultSpec fires after the US market close on weekdays.
const DefaultSpec = "30 22 * * 1-5"

// Config tunes the refresh job.
type Config struct {
	Spec           string        `yaml:"spec"`
	RequestsPerSec float64       `yaml:"requests_per_sec"`
	Burst          int           `yaml:"burst"`
	JobTimeout     time.Duration `yaml:"job_timeout"`
}

// DefaultConfig paces provider calls well under typical free-tier API
// limits.
func DefaultConfig() Config {
	return Config{
		Spec:           DefaultSpec,
		RequestsPerSec: 2,
		Burst:          1,
		JobTimeout:     15 * time.Minute,
	}
}

// Scheduler owns the cron runner and the refresh pipeline.
type Scheduler struct {
	cfg     Config
	catalog *config.Config
	engine  *application.Engine
	live    datasource.Bundle
	macro   persistence.MacroRepo
	prices  persistence.PriceRepo
	cron    *cron.Cron
	now     func() time.Time
}

// New builds a scheduler. The live bundle is the upstream provider
// boundary; the repos receive what it returns.
func New(cfg Config, catalog *config.Config, engine *application.Engine, live datasource.Bundle, macro persistence.MacroRepo, prices persistence.PriceRepo) *Scheduler {
	if cfg.Spec == "" {
		cfg.Spec = DefaultSpec
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 15 * time.Minute
	}
	return &Scheduler{
		cfg:     cfg,
		catalog: catalog,
		engine:  engine,
		live:    live,
		macro:   macro,
		prices:  prices,
		cron:    cron.New(),
		now:     time.Now,
	}
}

// Start registers the refresh job and starts the cron loop. It returns
// immediately; Stop drains a running job.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.cfg.Spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			log.Error().Err(err).Msg("scheduled refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", s.cfg.Spec, err)
	}
	s.cron.Start()
	log.Info().Str("spec", s.cfg.Spec).Msg("refresh scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("refresh scheduler stopped")
}

// Refresh runs one full refresh pass. Individual series failures are
// logged and skipped so one provider hiccup does not starve the rest;
// the final recompute still runs over whatever arrived.
func (s *Scheduler) Refresh(ctx context.Context) error {
	started := s.now()
	limiter := rate.NewLimiter(rate.Limit(s.cfg.RequestsPerSec), s.cfg.Burst)

	macroRows, err := s.refreshMacro(ctx, limiter)
	if err != nil {
		return err
	}
	priceRows, err := s.refreshPrices(ctx, limiter)
	if err != nil {
		return err
	}

	if _, _, err := s.engine.ComputeScores(ctx, s.now()); err != nil {
		return fmt.Errorf("score recompute after refresh failed: %w", err)
	}

	log.Info().
		Int("macro_rows", macroRows).
		Int("price_rows", priceRows).
		Dur("took", s.now().Sub(started)).
		Msg("refresh completed")
	return nil
}

func (s *Scheduler) refreshMacro(ctx context.Context, limiter *rate.Limiter) (int, error) {
	total := 0
	for _, spec := range s.catalog.Indicators {
		if err := limiter.Wait(ctx); err != nil {
			return total, err
		}
		since, err := s.macro.LatestDate(ctx, spec.ID)
		if err != nil {
			return total, fmt.Errorf("failed to read latest %s date: %w", spec.ID, err)
		}
		if !since.IsZero() {
			since = since.AddDate(0, 0, 1)
		}
		fresh, err := s.live.Macro.IndicatorSeries(ctx, spec.ID, since, time.Time{})
		if err != nil {
			log.Warn().Err(err).Str("indicator", spec.ID).Msg("macro refresh skipped")
			continue
		}
		n, err := s.macro.Append(ctx, spec.ID, fresh)
		if err != nil {
			return total, fmt.Errorf("failed to append %s: %w", spec.ID, err)
		}
		total += n
	}
	return total, nil
}

func (s *Scheduler) refreshPrices(ctx context.Context, limiter *rate.Limiter) (int, error) {
	total := 0
	symbols := append(sectors.Symbols(), sectors.BenchmarkSymbol)
	for _, symbol := range symbols {
		if err := limiter.Wait(ctx); err != nil {
			return total, err
		}
		since, err := s.prices.LatestDate(ctx, symbol)
		if err != nil {
			return total, fmt.Errorf("failed to read latest %s date: %w", symbol, err)
		}
		if !since.IsZero() {
			since = since.AddDate(0, 0, 1)
		}
		fresh, err := s.live.Prices.SectorPrices(ctx, symbol, since, time.Time{})
		if err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("price refresh skipped")
			continue
		}
		n, err := s.prices.Append(ctx, symbol, fresh)
		if err != nil {
			return total, fmt.Errorf("failed to append %s bars: %w", symbol, err)
		}
		total += n
	}
	return total, nil
}
