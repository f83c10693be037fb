package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sectorrun/sectorrun/internal/datasource"
	"github.com/sectorrun/sectorrun/internal/scheduler"
)

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the daily refresh scheduler",
		Long:  "Refresh macro and price history on a cron schedule, recomputing scores after each pull.",
		RunE:  runSchedule,
	}
	cmd.Flags().String("spec", scheduler.DefaultSpec, "cron spec for the refresh job")
	cmd.Flags().Bool("once", false, "run a single refresh now and exit")
	return cmd
}

func runSchedule(cmd *cobra.Command, args []string) error {
	setLogLevel(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	engine, _ := buildEngine(cfg, store)

	// The live provider boundary is supplied by the deployment; the
	// stored history doubles as the source when no upstream is wired,
	// which makes --once useful for recompute-only runs.
	live := datasource.Bundle{Macro: store.Macro, Prices: store.Prices}

	schedCfg := scheduler.DefaultConfig()
	schedCfg.Spec, _ = cmd.Flags().GetString("spec")
	sched := scheduler.New(schedCfg, cfg, engine, live, store.Macro, store.Prices)

	if once, _ := cmd.Flags().GetBool("once"); once {
		return sched.Refresh(cmd.Context())
	}

	if err := sched.Start(); err != nil {
		return err
	}
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	sig := <-stop
	log.Info().Str("signal", sig.String()).Msg("stopping scheduler")
	sched.Stop()
	return nil
}
