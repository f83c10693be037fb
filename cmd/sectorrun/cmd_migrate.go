package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			setLogLevel(cmd)
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			log.Info().Msg("schema ready")
			return nil
		},
	}
}
