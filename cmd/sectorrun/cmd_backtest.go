package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sectorrun/sectorrun/internal/backtest"
)

func backtestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run a backtest over stored history",
		Long:  "Replay the rotation strategy between two dates and print the run with its statistics as JSON.",
		RunE:  runBacktest,
	}
	cmd.Flags().String("start", "", "start date YYYY-MM-DD (required)")
	cmd.Flags().String("end", "", "end date YYYY-MM-DD (default latest)")
	cmd.Flags().Float64("capital", 0, "initial capital (default 100000)")
	cmd.Flags().String("frequency", "monthly", "rebalance frequency: daily, weekly, monthly")
	cmd.Flags().Int("top", 3, "number of sectors to hold")
	cmd.Flags().Float64("risk-free", 0, "annualized risk-free rate")
	return cmd
}

func runBacktest(cmd *cobra.Command, args []string) error {
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

	var btCfg backtest.Config
	startRaw, _ := cmd.Flags().GetString("start")
	if startRaw == "" {
		return fmt.Errorf("--start is required")
	}
	btCfg.StartDate, err = time.Parse("2006-01-02", startRaw)
	if err != nil {
		return fmt.Errorf("start date must be YYYY-MM-DD: %w", err)
	}
	if endRaw, _ := cmd.Flags().GetString("end"); endRaw != "" {
		btCfg.EndDate, err = time.Parse("2006-01-02", endRaw)
		if err != nil {
			return fmt.Errorf("end date must be YYYY-MM-DD: %w", err)
		}
	}
	btCfg.InitialCapital, _ = cmd.Flags().GetFloat64("capital")
	freq, _ := cmd.Flags().GetString("frequency")
	btCfg.RebalanceFrequency = backtest.Frequency(freq)
	btCfg.TopN, _ = cmd.Flags().GetInt("top")
	btCfg.RiskFreeRate, _ = cmd.Flags().GetFloat64("risk-free")

	engine, _ := buildEngine(cfg, store)
	run, err := engine.RunBacktest(cmd.Context(), btCfg)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}
