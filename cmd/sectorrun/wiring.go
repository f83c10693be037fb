package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sectorrun/sectorrun/internal/application"
	"github.com/sectorrun/sectorrun/internal/config"
	"github.com/sectorrun/sectorrun/internal/datasource"
	"github.com/sectorrun/sectorrun/internal/persistence/postgres"
)

// loadConfig resolves the engine configuration from --config or the
// built-in defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// openStore connects to PostgreSQL using SECTORRUN_DB_DSN and ensures
// the schema exists.
func openStore(ctx context.Context) (*postgres.Store, error) {
	dsn := os.Getenv("SECTORRUN_DB_DSN")
	if dsn == "" {
		return nil, fmt.Errorf("SECTORRUN_DB_DSN is not set")
	}
	store, err := postgres.Connect(dsn, 10*time.Second)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// buildEngine wires the engine over the store: stored history is both
// the datasource and the persistence target. The external model score
// source is optional; without one every sector reads neutral.
func buildEngine(cfg *config.Config, store *postgres.Store) (*application.Engine, application.Repos) {
	bundle := datasource.Bundle{
		Macro:  store.Macro,
		Prices: store.Prices,
	}
	repos := application.Repos{
		Scores:    store.Scores,
		Cycle:     store.Cycle,
		Backtests: store.Backtest,
	}
	return application.New(cfg, bundle, repos), repos
}
