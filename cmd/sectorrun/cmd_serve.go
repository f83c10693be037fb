package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpapi "github.com/sectorrun/sectorrun/internal/interfaces/http"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		Long:  "Serve the dashboard, macro, sector, score, and backtest endpoints over HTTP.",
		RunE:  runServe,
	}
	cmd.Flags().String("host", "127.0.0.1", "listen host")
	cmd.Flags().Int("port", 8080, "listen port")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
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

	engine, repos := buildEngine(cfg, store)

	serverCfg := httpapi.DefaultServerConfig()
	serverCfg.Host, _ = cmd.Flags().GetString("host")
	serverCfg.Port, _ = cmd.Flags().GetInt("port")
	server := httpapi.NewServer(serverCfg, engine, repos)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	}
}
