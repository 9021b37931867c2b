// Package main collects Kalshi market snapshots.
// Executes: list markets → snapshot → Postgres (or CSV)
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"kalshi-feature-lab/internal/collector"
	"kalshi-feature-lab/internal/config"
	"kalshi-feature-lab/internal/domain"
	"kalshi-feature-lab/internal/kalshi"
	"kalshi-feature-lab/internal/marketcsv"
	"kalshi-feature-lab/internal/observability"
	"kalshi-feature-lab/internal/storage/migrations"
	"kalshi-feature-lab/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to the YAML config file")
	once := flag.Bool("once", false, "Poll a single time and exit")
	output := flag.String("output", "", "Write snapshots to this CSV instead of Postgres")
	stream := flag.Bool("stream", false, "Consume the websocket ticker stream instead of polling")
	tickers := flag.String("tickers", "", "Comma-separated tickers for stream mode (default: all open markets)")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
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
		log.WithField("signal", sig.String()).Info("shutting down")
		cancel()
	}()

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	client := kalshi.NewClient(cfg.API.BaseURL)

	if *output != "" {
		if err := collectToCSV(ctx, client, cfg, *output); err != nil {
			log.WithError(err).Fatal("csv collection failed")
		}
		return
	}

	pool, err := postgres.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("postgres connection failed")
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		log.WithError(err).Fatal("postgres migrations failed")
	}

	store := postgres.NewSnapshotStore(pool)
	c := collector.New(client, store, collector.Config{
		Interval: cfg.PollInterval(),
		Status:   cfg.Collector.Status,
	}, log)

	switch {
	case *stream:
		err = runStream(ctx, client, c, cfg, *tickers)
	case *once:
		_, err = c.CollectOnce(ctx)
	default:
		err = c.Run(ctx)
	}
	if err != nil && ctx.Err() == nil {
		log.WithError(err).Fatal("collection failed")
	}
}

// collectToCSV performs one poll and writes the snapshots to a file.
func collectToCSV(ctx context.Context, client *kalshi.Client, cfg *config.Config, path string) error {
	markets, err := client.Markets(ctx, cfg.Collector.Status)
	if err != nil {
		return err
	}

	collectedAt := time.Now().UTC()
	snapshots := make([]*domain.Snapshot, 0, len(markets))
	for i := range markets {
		m := &markets[i]
		if !m.HasYesInterest() {
			continue
		}
		snapshots = append(snapshots, m.Snapshot(collectedAt))
	}

	if err := marketcsv.WriteSnapshotsFile(path, snapshots); err != nil {
		return err
	}
	fmt.Printf("Wrote %d snapshots to %s\n", len(snapshots), path)
	return nil
}

// runStream subscribes to the websocket ticker channel and appends each
// update as a snapshot row.
func runStream(ctx context.Context, client *kalshi.Client, c *collector.Collector, cfg *config.Config, tickerList string) error {
	var subscribe []string
	if tickerList != "" {
		subscribe = strings.Split(tickerList, ",")
	} else {
		markets, err := client.Markets(ctx, cfg.Collector.Status)
		if err != nil {
			return err
		}
		for i := range markets {
			if markets[i].HasYesInterest() {
				subscribe = append(subscribe, markets[i].Ticker)
			}
		}
	}
	if len(subscribe) == 0 {
		return fmt.Errorf("no tickers to subscribe to")
	}

	ws, err := kalshi.NewWSClient(ctx, cfg.API.WSURL, subscribe, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	return c.Stream(ctx, ws.Updates())
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
