// Package main provides the E2E feature pipeline entry point.
// Executes: Postgres snapshots → indicator engine → ClickHouse features
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"kalshi-feature-lab/internal/config"
	"kalshi-feature-lab/internal/orchestrator"
	"kalshi-feature-lab/internal/reporting"
	"kalshi-feature-lab/internal/storage/clickhouse"
	"kalshi-feature-lab/internal/storage/migrations"
	"kalshi-feature-lab/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to the YAML config file")
	workers := flag.Int("workers", 4, "Concurrent ticker computations")
	summaryPath := flag.String("summary", "RUN_SUMMARY.md", "Where to write the run summary")
	head := flag.Int("head", 0, "Print the first N enriched rows")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	log := newLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.WithField("signal", sig.String()).Info("cancelling pipeline")
		cancel()
	}()

	pool, err := postgres.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("postgres connection failed")
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		log.WithError(err).Fatal("postgres migrations failed")
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
	if err != nil {
		log.WithError(err).Fatal("clickhouse migrations failed")
	}
	defer conn.Close()

	orch := orchestrator.New(orchestrator.Options{
		SnapshotStore: postgres.NewSnapshotStore(pool),
		FeatureStore:  clickhouse.NewFeatureStore(conn),
		Indicator:     cfg.ToIndicator(),
		Workers:       *workers,
		Logger:        log,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		log.WithError(err).Fatal("pipeline run failed")
	}

	fmt.Println("=== Feature Pipeline ===")
	fmt.Printf("  Tickers:  %d\n", result.TickersProcessed)
	fmt.Printf("  Rows in:  %d\n", result.RowsIn)
	fmt.Printf("  Rows out: %d\n", result.RowsOut)
	fmt.Printf("  Errors:   %d\n", len(result.Errors))

	summary := reporting.Summarize(result.Rows, result.RowsIn, result.Errors)
	md := reporting.RenderSummaryMarkdown(summary)
	if err := os.WriteFile(*summaryPath, []byte(md), 0o644); err != nil {
		log.WithError(err).Fatal("writing summary failed")
	}
	fmt.Printf("Summary written to %s\n", *summaryPath)

	if *head > 0 {
		fmt.Println()
		reporting.Preview(os.Stdout, result.Rows, *head)
	}

	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}

// newLogger builds a logrus logger from the log section.
func newLogger(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		log.SetLevel(level)
	}
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}
