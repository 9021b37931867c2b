package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"kalshi-feature-lab/internal/domain"
	"kalshi-feature-lab/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using PostgreSQL.
type SnapshotStore struct {
	pool *Pool
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(pool *Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

const snapshotColumns = `
	ticker, timestamp, title, event_ticker, category, status,
	close_time, yes_bid, yes_ask, no_bid, no_ask,
	volume, open_interest, last_trade_price
`

// InsertBulk adds multiple snapshots atomically. Fails the entire batch
// on any duplicate (ticker, timestamp) key.
func (s *SnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	for _, snap := range snapshots {
		if snap == nil || snap.Ticker == "" || snap.Timestamp == nil {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO market_snapshots (` + snapshotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	for _, snap := range snapshots {
		_, err := tx.Exec(ctx, query,
			snap.Ticker,
			*snap.Timestamp,
			snap.Title,
			snap.EventTicker,
			snap.Category,
			snap.Status,
			snap.CloseTime,
			snap.YesBid,
			snap.YesAsk,
			snap.NoBid,
			snap.NoAsk,
			snap.Volume,
			snap.OpenInterest,
			snap.LastTradePrice,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert snapshot: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByTicker retrieves all snapshots for a ticker, ordered by timestamp ASC.
func (s *SnapshotStore) GetByTicker(ctx context.Context, ticker string) ([]*domain.Snapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM market_snapshots
		WHERE ticker = $1
		ORDER BY timestamp ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("get snapshots by ticker: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// GetByTimeRange retrieves snapshots for a ticker within [start, end] (inclusive).
func (s *SnapshotStore) GetByTimeRange(ctx context.Context, ticker string, start, end float64) ([]*domain.Snapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM market_snapshots
		WHERE ticker = $1 AND timestamp >= $2 AND timestamp <= $3
		ORDER BY timestamp ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("get snapshots by time range: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// ListTickers returns every distinct ticker, sorted ascending.
func (s *SnapshotStore) ListTickers(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT ticker FROM market_snapshots ORDER BY ticker ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan ticker row: %w", err)
		}
		tickers = append(tickers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticker rows: %w", err)
	}
	return tickers, nil
}

// scanSnapshots scans multiple rows into a slice of Snapshot.
func scanSnapshots(rows pgx.Rows) ([]*domain.Snapshot, error) {
	var snapshots []*domain.Snapshot

	for rows.Next() {
		var snap domain.Snapshot
		var timestamp float64

		err := rows.Scan(
			&snap.Ticker,
			&timestamp,
			&snap.Title,
			&snap.EventTicker,
			&snap.Category,
			&snap.Status,
			&snap.CloseTime,
			&snap.YesBid,
			&snap.YesAsk,
			&snap.NoBid,
			&snap.NoAsk,
			&snap.Volume,
			&snap.OpenInterest,
			&snap.LastTradePrice,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}

		snap.Timestamp = &timestamp
		snapshots = append(snapshots, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return snapshots, nil
}
