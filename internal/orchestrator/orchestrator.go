// Package orchestrator coordinates the store-backed feature pipeline:
// snapshots in, enriched feature rows out.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"kalshi-feature-lab/internal/domain"
	"kalshi-feature-lab/internal/indicator"
	"kalshi-feature-lab/internal/observability"
	"kalshi-feature-lab/internal/storage"
)

// Options for creating Orchestrator.
type Options struct {
	SnapshotStore storage.SnapshotStore
	FeatureStore  storage.FeatureStore

	// Indicator is the window configuration for the feature engine.
	Indicator indicator.Config

	// Workers bounds the per-ticker compute pool. Defaults to 4.
	Workers int

	Logger *logrus.Logger
}

// Orchestrator runs the feature pipeline over every stored ticker.
// Ticker histories are independent, so they compute concurrently; the
// output order is deterministic regardless of worker scheduling.
type Orchestrator struct {
	snapshots storage.SnapshotStore
	features  storage.FeatureStore
	cfg       indicator.Config
	workers   int
	log       *logrus.Entry
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	workers := opts.Workers
	if workers < 1 {
		workers = 4
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Orchestrator{
		snapshots: opts.SnapshotStore,
		features:  opts.FeatureStore,
		cfg:       opts.Indicator,
		workers:   workers,
		log:       logger.WithField("component", "orchestrator"),
	}
}

// RunResult contains results from a pipeline run.
type RunResult struct {
	TickersProcessed int
	RowsIn           int
	RowsOut          int
	Rows             []*domain.FeatureRow
	Errors           []string
}

// tickerResult holds one ticker's output, slotted by ticker index so
// the merge order never depends on scheduling.
type tickerResult struct {
	rows []*domain.FeatureRow
	err  error
	in   int
}

// Run computes features for every ticker in the snapshot store and
// bulk-inserts them into the feature store. Per-ticker failures are
// recorded in the result; only store-level failures abort the run.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	tickers, err := o.snapshots.ListTickers(ctx)
	if err != nil {
		observability.RecordPipelineRun("error", time.Since(start).Seconds(), 0)
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	o.log.WithField("tickers", len(tickers)).Info("starting feature run")

	result := &RunResult{}
	if len(tickers) == 0 {
		return result, nil
	}

	results := make([]tickerResult, len(tickers))

	// Bounded worker pool over ticker indices.
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = o.runTicker(ctx, tickers[i])
			}
		}()
	}
	for i := range tickers {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// Merge in ticker order.
	for i, ticker := range tickers {
		r := results[i]
		if r.err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("ticker %s: %v", ticker, r.err))
			continue
		}
		result.TickersProcessed++
		result.RowsIn += r.in
		result.RowsOut += len(r.rows)
		result.Rows = append(result.Rows, r.rows...)
	}

	if o.features != nil && len(result.Rows) > 0 {
		if err := o.features.InsertBulk(ctx, result.Rows); err != nil {
			observability.RecordPipelineRun("error", time.Since(start).Seconds(), 0)
			return nil, fmt.Errorf("store features: %w", err)
		}
	}

	status := "success"
	if len(result.Errors) > 0 {
		status = "partial"
	}
	observability.RecordPipelineRun(status, time.Since(start).Seconds(), result.RowsOut)

	o.log.WithFields(logrus.Fields{
		"tickers":  result.TickersProcessed,
		"rows_in":  result.RowsIn,
		"rows_out": result.RowsOut,
		"errors":   len(result.Errors),
	}).Info("feature run complete")

	return result, nil
}

// runTicker loads one ticker's history and enriches it.
func (o *Orchestrator) runTicker(ctx context.Context, ticker string) tickerResult {
	snaps, err := o.snapshots.GetByTicker(ctx, ticker)
	if err != nil {
		return tickerResult{err: fmt.Errorf("load snapshots: %w", err)}
	}
	if len(snaps) == 0 {
		return tickerResult{}
	}

	table := &domain.SnapshotTable{
		Columns: domain.CanonicalColumns,
		Rows:    snaps,
	}
	rows, err := indicator.Enrich(table, o.cfg)
	if err != nil {
		return tickerResult{err: err}
	}
	return tickerResult{rows: rows, in: len(snaps)}
}
