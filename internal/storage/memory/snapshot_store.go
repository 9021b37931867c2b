// Package memory provides in-memory store implementations, used in
// tests and for CSV-only runs that never touch a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"kalshi-feature-lab/internal/domain"
	"kalshi-feature-lab/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
type SnapshotStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Snapshot // keyed by (ticker, timestamp)
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{data: make(map[string]*domain.Snapshot)}
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// snapshotKey generates a unique key for a snapshot row.
func snapshotKey(ticker string, timestamp float64) string {
	return fmt.Sprintf("%s|%g", ticker, timestamp)
}

// InsertBulk adds multiple snapshots atomically. Fails the entire batch
// on any duplicate key.
func (s *SnapshotStore) InsertBulk(_ context.Context, snapshots []*domain.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: validate and detect duplicates, existing and intra-batch.
	batchKeys := make(map[string]struct{}, len(snapshots))
	for _, snap := range snapshots {
		if snap == nil || snap.Ticker == "" || snap.Timestamp == nil {
			return storage.ErrInvalidInput
		}
		key := snapshotKey(snap.Ticker, *snap.Timestamp)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all.
	for _, snap := range snapshots {
		snapCopy := *snap
		s.data[snapshotKey(snap.Ticker, *snap.Timestamp)] = &snapCopy
	}

	return nil
}

// GetByTicker retrieves all snapshots for a ticker, ordered by timestamp ASC.
func (s *SnapshotStore) GetByTicker(_ context.Context, ticker string) ([]*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Snapshot
	for _, snap := range s.data {
		if snap.Ticker == ticker {
			snapCopy := *snap
			result = append(result, &snapCopy)
		}
	}

	sortSnapshots(result)
	return result, nil
}

// GetByTimeRange retrieves snapshots for a ticker within [start, end] (inclusive).
func (s *SnapshotStore) GetByTimeRange(_ context.Context, ticker string, start, end float64) ([]*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Snapshot
	for _, snap := range s.data {
		if snap.Ticker == ticker && *snap.Timestamp >= start && *snap.Timestamp <= end {
			snapCopy := *snap
			result = append(result, &snapCopy)
		}
	}

	sortSnapshots(result)
	return result, nil
}

// ListTickers returns every distinct ticker, sorted ascending.
func (s *SnapshotStore) ListTickers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, snap := range s.data {
		seen[snap.Ticker] = struct{}{}
	}

	tickers := make([]string, 0, len(seen))
	for t := range seen {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers, nil
}

func sortSnapshots(snapshots []*domain.Snapshot) {
	sort.Slice(snapshots, func(i, j int) bool {
		return *snapshots[i].Timestamp < *snapshots[j].Timestamp
	})
}
