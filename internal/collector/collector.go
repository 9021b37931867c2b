// Package collector turns the Kalshi API into snapshot store rows: a
// polling loop over the REST market list, and a streaming loop over the
// websocket ticker channel. Markets with no YES-side interest are
// skipped at collection time.
package collector

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"kalshi-feature-lab/internal/domain"
	"kalshi-feature-lab/internal/kalshi"
	"kalshi-feature-lab/internal/observability"
	"kalshi-feature-lab/internal/storage"
)

// MarketLister lists markets from the exchange.
type MarketLister interface {
	Markets(ctx context.Context, status string) ([]kalshi.Market, error)
}

// Config configures the collector.
type Config struct {
	// Interval between polls. Ignored by CollectOnce.
	Interval time.Duration
	// Status filters the market listing; "open" in production.
	Status string
}

// DefaultConfig returns the standard collection settings.
func DefaultConfig() Config {
	return Config{
		Interval: time.Minute,
		Status:   "open",
	}
}

// Collector polls the market list and appends snapshots to a store.
type Collector struct {
	client MarketLister
	store  storage.SnapshotStore
	config Config
	log    *logrus.Entry
}

// New creates a Collector.
func New(client MarketLister, store storage.SnapshotStore, config Config, log *logrus.Logger) *Collector {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Collector{
		client: client,
		store:  store,
		config: config,
		log:    log.WithField("component", "collector"),
	}
}

// CollectOnce performs a single poll: list markets, drop those without
// YES-side interest, stamp the rest with the collection time and append
// them. Returns the number of snapshots stored.
func (c *Collector) CollectOnce(ctx context.Context) (int, error) {
	start := time.Now()
	markets, err := c.client.Markets(ctx, c.config.Status)
	observability.RecordAPILatency("markets", time.Since(start).Seconds())
	if err != nil {
		observability.RecordCollectionError("list")
		return 0, err
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

	if err := c.store.InsertBulk(ctx, snapshots); err != nil {
		// A re-poll inside the same second collides on (ticker, timestamp).
		if errors.Is(err, storage.ErrDuplicateKey) {
			observability.RecordDuplicateBatch()
			c.log.WithField("rows", len(snapshots)).Warn("skipping batch with duplicate keys")
			return 0, nil
		}
		observability.RecordCollectionError("store")
		return 0, err
	}

	observability.RecordCollection(len(markets), len(snapshots))
	c.log.WithFields(logrus.Fields{
		"markets": len(markets),
		"stored":  len(snapshots),
	}).Info("collected market snapshots")

	return len(snapshots), nil
}

// Run polls until the context is cancelled.
func (c *Collector) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	for {
		if _, err := c.CollectOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.WithError(err).Error("poll failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Stream consumes websocket ticker updates and appends each as a
// snapshot row until the channel closes or the context is cancelled.
func (c *Collector) Stream(ctx context.Context, updates <-chan kalshi.TickerUpdate) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			observability.RecordStreamUpdate()
			snap := u.Snapshot()
			err := c.store.InsertBulk(ctx, []*domain.Snapshot{snap})
			if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
				observability.RecordCollectionError("stream_store")
				c.log.WithError(err).WithField("ticker", snap.Ticker).Error("store update failed")
			}
		}
	}
}
