package clickhouse

import (
	"context"
	"fmt"

	"kalshi-feature-lab/internal/domain"
	"kalshi-feature-lab/internal/storage"
)

// FeatureStore implements storage.FeatureStore using ClickHouse.
type FeatureStore struct {
	conn *Conn
}

// NewFeatureStore creates a new FeatureStore.
func NewFeatureStore(conn *Conn) *FeatureStore {
	return &FeatureStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FeatureStore = (*FeatureStore)(nil)

const featureColumns = `
	ticker, timestamp, close_time, status,
	yes_bid, yes_ask, no_bid, no_ask, volume, open_interest,
	has_yes_book, has_no_book,
	mid_yes, mid_no, spread_yes, spread_no, rel_spread_yes,
	p_yes, overround, tte_hours,
	d_volume, d_open_interest,
	delta_p, z_p, vol_p, range_p, momentum_p,
	ema_fast, ema_slow, ema_diff, accel_p,
	near_bounds, is_unchanged
`

// InsertBulk adds multiple feature rows. ReplacingMergeTree collapses
// rows sharing a (ticker, timestamp) key, so re-inserting overwrites.
func (s *FeatureStore) InsertBulk(ctx context.Context, rows []*domain.FeatureRow) error {
	if len(rows) == 0 {
		return nil
	}
	for _, fr := range rows {
		if fr == nil || fr.Ticker == "" || fr.Timestamp == nil {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO market_features (`+featureColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, fr := range rows {
		// Pass nil values directly for Nullable columns
		err = batch.Append(
			fr.Ticker, *fr.Timestamp, fr.CloseTime, fr.Status,
			fr.YesBid, fr.YesAsk, fr.NoBid, fr.NoAsk, fr.Volume, fr.OpenInterest,
			fr.HasYesBook, fr.HasNoBook,
			fr.MidYes, fr.MidNo, fr.SpreadYes, fr.SpreadNo, fr.RelSpreadYes,
			fr.PYes, fr.Overround, fr.TTEHours,
			fr.DVolume, fr.DOpenInterest,
			fr.DeltaP, fr.ZP, fr.VolP, fr.RangeP, fr.MomentumP,
			fr.EMAFast, fr.EMASlow, fr.EMADiff, fr.AccelP,
			fr.NearBounds, fr.IsUnchanged,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTicker retrieves all feature rows for a ticker, ordered by timestamp ASC.
// FINAL resolves any not-yet-merged replacement rows.
func (s *FeatureStore) GetByTicker(ctx context.Context, ticker string) ([]*domain.FeatureRow, error) {
	query := `
		SELECT ` + featureColumns + `
		FROM market_features FINAL
		WHERE ticker = ?
		ORDER BY timestamp ASC
	`

	rows, err := s.conn.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("query by ticker: %w", err)
	}
	defer rows.Close()

	return scanFeatureRows(rows)
}

// GetByTimeRange retrieves feature rows for a ticker within [start, end] (inclusive).
func (s *FeatureStore) GetByTimeRange(ctx context.Context, ticker string, start, end float64) ([]*domain.FeatureRow, error) {
	query := `
		SELECT ` + featureColumns + `
		FROM market_features FINAL
		WHERE ticker = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`

	rows, err := s.conn.Query(ctx, query, ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanFeatureRows(rows)
}

// chRows abstracts driver.Rows for scanning.
type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// scanFeatureRows scans multiple rows.
func scanFeatureRows(rows chRows) ([]*domain.FeatureRow, error) {
	var result []*domain.FeatureRow

	for rows.Next() {
		var fr domain.FeatureRow
		var timestamp float64

		err := rows.Scan(
			&fr.Ticker, &timestamp, &fr.CloseTime, &fr.Status,
			&fr.YesBid, &fr.YesAsk, &fr.NoBid, &fr.NoAsk, &fr.Volume, &fr.OpenInterest,
			&fr.HasYesBook, &fr.HasNoBook,
			&fr.MidYes, &fr.MidNo, &fr.SpreadYes, &fr.SpreadNo, &fr.RelSpreadYes,
			&fr.PYes, &fr.Overround, &fr.TTEHours,
			&fr.DVolume, &fr.DOpenInterest,
			&fr.DeltaP, &fr.ZP, &fr.VolP, &fr.RangeP, &fr.MomentumP,
			&fr.EMAFast, &fr.EMASlow, &fr.EMADiff, &fr.AccelP,
			&fr.NearBounds, &fr.IsUnchanged,
		)
		if err != nil {
			return nil, fmt.Errorf("scan feature row: %w", err)
		}

		fr.Timestamp = &timestamp
		result = append(result, &fr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature rows: %w", err)
	}

	return result, nil
}
