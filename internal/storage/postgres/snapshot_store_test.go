package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"kalshi-feature-lab/internal/domain"
	"kalshi-feature-lab/internal/storage"
)

func testSnapshot(ticker string, ts float64) *domain.Snapshot {
	return &domain.Snapshot{
		Ticker:      ticker,
		Timestamp:   ptr(ts),
		Title:       "Test market",
		EventTicker: "EVT",
		Category:    "Test",
		Status:      "open",
		CloseTime:   ptr(ts + 3600),
		YesBid:      ptr(48.0),
		YesAsk:      ptr(52.0),
		NoBid:       ptr(47.0),
		NoAsk:       ptr(53.0),
		Volume:      ptr(100.0),
	}
}

func TestSnapshotStore_InsertBulkAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(pool)
	ctx := context.Background()

	snapshots := []*domain.Snapshot{
		testSnapshot("MKT-A", 100),
		testSnapshot("MKT-A", 200),
		testSnapshot("MKT-B", 150),
	}
	require.NoError(t, store.InsertBulk(ctx, snapshots))

	result, err := store.GetByTicker(ctx, "MKT-A")
	require.NoError(t, err)
	require.Len(t, result, 2)

	got := result[0]
	require.Equal(t, "MKT-A", got.Ticker)
	require.NotNil(t, got.Timestamp)
	require.Equal(t, 100.0, *got.Timestamp)
	require.Equal(t, "Test market", got.Title)
	require.NotNil(t, got.YesBid)
	require.Equal(t, 48.0, *got.YesBid)
	require.Nil(t, got.OpenInterest)
	require.Nil(t, got.LastTradePrice)
}

func TestSnapshotStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(pool)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.Snapshot{testSnapshot("MKT-A", 100)}))

	err := store.InsertBulk(ctx, []*domain.Snapshot{testSnapshot("MKT-A", 100)})
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestSnapshotStore_BatchRollsBackOnDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(pool)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.Snapshot{testSnapshot("MKT-A", 100)}))

	// Second batch contains one new and one duplicate row; neither lands.
	err := store.InsertBulk(ctx, []*domain.Snapshot{
		testSnapshot("MKT-A", 200),
		testSnapshot("MKT-A", 100),
	})
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	result, err := store.GetByTicker(ctx, "MKT-A")
	require.NoError(t, err)
	require.Len(t, result, 1)
}

func TestSnapshotStore_GetByTimeRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(pool)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.Snapshot{
		testSnapshot("MKT-A", 100),
		testSnapshot("MKT-A", 200),
		testSnapshot("MKT-A", 300),
	}))

	result, err := store.GetByTimeRange(ctx, "MKT-A", 150, 300)
	require.NoError(t, err)
	require.Len(t, result, 2)
	require.Equal(t, 200.0, *result[0].Timestamp)
	require.Equal(t, 300.0, *result[1].Timestamp)
}

func TestSnapshotStore_ListTickers(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(pool)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.Snapshot{
		testSnapshot("MKT-B", 100),
		testSnapshot("MKT-A", 100),
		testSnapshot("MKT-A", 200),
	}))

	tickers, err := store.ListTickers(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"MKT-A", "MKT-B"}, tickers)
}

func TestSnapshotStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(pool)
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.Snapshot{{Ticker: "MKT-A"}})
	require.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestSnapshotStore_NullableQuotes(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(pool)
	ctx := context.Background()

	snap := &domain.Snapshot{Ticker: "MKT-A", Timestamp: ptr(100.0)}
	require.NoError(t, store.InsertBulk(ctx, []*domain.Snapshot{snap}))

	result, err := store.GetByTicker(ctx, "MKT-A")
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Nil(t, result[0].YesBid)
	require.Nil(t, result[0].CloseTime)
	require.Equal(t, "", result[0].Title)
}
