package storage

import (
	"context"

	"kalshi-feature-lab/internal/domain"
)

// SnapshotStore provides access to market_snapshots storage.
// Snapshots are keyed by (ticker, timestamp).
type SnapshotStore interface {
	// InsertBulk adds multiple snapshots atomically. Fails the entire
	// batch on any duplicate key. Rows must carry a ticker and a
	// numeric timestamp; returns ErrInvalidInput otherwise.
	InsertBulk(ctx context.Context, snapshots []*domain.Snapshot) error

	// GetByTicker retrieves all snapshots for a ticker, ordered by timestamp ASC.
	GetByTicker(ctx context.Context, ticker string) ([]*domain.Snapshot, error)

	// GetByTimeRange retrieves snapshots for a ticker within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, ticker string, start, end float64) ([]*domain.Snapshot, error)

	// ListTickers returns every distinct ticker, sorted ascending.
	ListTickers(ctx context.Context) ([]string, error)
}

// FeatureStore provides access to market_features storage.
// Re-inserting a (ticker, timestamp) key overwrites the previous row,
// so recomputation runs are idempotent.
type FeatureStore interface {
	// InsertBulk adds multiple feature rows.
	InsertBulk(ctx context.Context, rows []*domain.FeatureRow) error

	// GetByTicker retrieves all feature rows for a ticker, ordered by timestamp ASC.
	GetByTicker(ctx context.Context, ticker string) ([]*domain.FeatureRow, error)

	// GetByTimeRange retrieves feature rows for a ticker within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, ticker string, start, end float64) ([]*domain.FeatureRow, error)
}
