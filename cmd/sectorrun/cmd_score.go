package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute and print the sector score cross-section",
		Long:  "Compute the ranked cross-section as of a date (default today), persist it, and print it as JSON.",
		RunE:  runScore,
	}
	cmd.Flags().String("date", "", "as-of date YYYY-MM-DD (default today)")
	return cmd
}

func runScore(cmd *cobra.Command, args []string) error {
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

	asOf := time.Now().UTC()
	if raw, _ := cmd.Flags().GetString("date"); raw != "" {
		asOf, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
		}
	}

	engine, _ := buildEngine(cfg, store)
	scores, assessment, err := engine.ComputeScores(cmd.Context(), asOf)
	if err != nil {
		return err
	}

	out := map[string]any{
		"as_of":          asOf.Format("2006-01-02"),
		"business_cycle": assessment,
		"scores":         scores,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
