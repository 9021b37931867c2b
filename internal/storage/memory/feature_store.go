package memory

import (
	"context"
	"sort"
	"sync"

	"kalshi-feature-lab/internal/domain"
	"kalshi-feature-lab/internal/storage"
)

// FeatureStore is an in-memory implementation of storage.FeatureStore.
type FeatureStore struct {
	mu   sync.RWMutex
	data map[string]*domain.FeatureRow // keyed by (ticker, timestamp)
}

// NewFeatureStore creates a new in-memory feature store.
func NewFeatureStore() *FeatureStore {
	return &FeatureStore{data: make(map[string]*domain.FeatureRow)}
}

var _ storage.FeatureStore = (*FeatureStore)(nil)

// InsertBulk adds multiple feature rows. Re-inserting an existing
// (ticker, timestamp) key overwrites the previous row.
func (s *FeatureStore) InsertBulk(_ context.Context, rows []*domain.FeatureRow) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, fr := range rows {
		if fr == nil || fr.Ticker == "" || fr.Timestamp == nil {
			return storage.ErrInvalidInput
		}
	}
	for _, fr := range rows {
		rowCopy := *fr
		s.data[snapshotKey(fr.Ticker, *fr.Timestamp)] = &rowCopy
	}

	return nil
}

// GetByTicker retrieves all feature rows for a ticker, ordered by timestamp ASC.
func (s *FeatureStore) GetByTicker(_ context.Context, ticker string) ([]*domain.FeatureRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.FeatureRow
	for _, fr := range s.data {
		if fr.Ticker == ticker {
			rowCopy := *fr
			result = append(result, &rowCopy)
		}
	}

	sortFeatureRows(result)
	return result, nil
}

// GetByTimeRange retrieves feature rows for a ticker within [start, end] (inclusive).
func (s *FeatureStore) GetByTimeRange(_ context.Context, ticker string, start, end float64) ([]*domain.FeatureRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.FeatureRow
	for _, fr := range s.data {
		if fr.Ticker == ticker && *fr.Timestamp >= start && *fr.Timestamp <= end {
			rowCopy := *fr
			result = append(result, &rowCopy)
		}
	}

	sortFeatureRows(result)
	return result, nil
}

func sortFeatureRows(rows []*domain.FeatureRow) {
	sort.Slice(rows, func(i, j int) bool {
		return *rows[i].Timestamp < *rows[j].Timestamp
	})
}
