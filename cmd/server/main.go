// Package main serves the prediction read API over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"btc-forecast/internal/config"
	"btc-forecast/internal/logging"
	"btc-forecast/internal/server"
	"btc-forecast/internal/storage"
	"btc-forecast/internal/storage/memory"
	"btc-forecast/internal/storage/migrations"
	"btc-forecast/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML configuration")
	useMemory := flag.Bool("use-memory", false, "Serve from an in-memory prediction store (development only)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
	}()

	var predictions storage.PredictionStore
	if *useMemory {
		logger.Warn().Msg("using in-memory prediction store, data will not persist")
		predictions = memory.NewPredictionStore()
	} else {
		pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect to postgres")
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("apply postgres migrations")
		}
		predictions = postgres.NewPredictionStore(pool)
	}

	srv := server.New(server.Options{
		Predictions: predictions,
		Logger:      logger,
	})

	if err := srv.Start(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout); err != nil {
		logger.Fatal().Err(err).Msg("http server failed")
	}
	logger.Info().Msg("server stopped")
}
