// Package main runs one incremental ingestion pass: fetch daily OHLCV
// history, upsert into PostgreSQL and append to the ClickHouse archive.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"btc-forecast/internal/config"
	"btc-forecast/internal/ingestion"
	"btc-forecast/internal/logging"
	"btc-forecast/internal/storage/clickhouse"
	"btc-forecast/internal/storage/migrations"
	"btc-forecast/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML configuration")
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
		logger.Info().Str("signal", sig.String()).Msg("cancelling ingestion")
		cancel()
	}()

	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to postgres")
	}
	defer pool.Close()

	conn, err := clickhouse.NewConn(ctx, cfg.ClickHouse.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to clickhouse")
	}
	defer conn.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("apply postgres migrations")
	}
	if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
		logger.Fatal().Err(err).Msg("apply clickhouse migrations")
	}

	source, err := createSource(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("create candle source")
	}

	runner := ingestion.NewRunner(ingestion.RunnerOptions{
		Source:      source,
		MarketStore: postgres.NewMarketDataStore(pool),
		Archive:     clickhouse.NewCandleArchiveStore(conn),
		Logger:      logger,
	})

	result, err := runner.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("ingestion failed")
	}

	logger.Info().
		Int("fetched", result.Fetched).
		Int("stored", result.Stored).
		Msg("ingestion complete")
}

// createSource builds the configured candle source.
func createSource(cfg *config.Config) (ingestion.CandleSource, error) {
	switch cfg.Source.Type {
	case "http":
		return ingestion.NewHTTPSource(cfg.Source.URL, cfg.Source.Symbol), nil
	case "csv":
		return ingestion.NewCSVSource(cfg.Source.Path), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.Source.Type)
	}
}
