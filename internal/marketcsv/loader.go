// Package marketcsv reads and writes market snapshot CSV files in the
// collector's column layout, and renders enriched feature rows back out
// with the input columns passed through in front of the derived ones.
package marketcsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"kalshi-feature-lab/internal/domain"
)

// LoadSnapshots parses snapshot rows from CSV. The header row names the
// columns; unknown columns are recorded in the table but their values
// dropped. Numeric cells that fail to parse become nil, matching the
// engine's missing-value semantics.
func LoadSnapshots(r io.Reader) (*domain.SnapshotTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty csv: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}

	table := &domain.SnapshotTable{Columns: header}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		cell := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		}

		table.Rows = append(table.Rows, &domain.Snapshot{
			Ticker:         cell("ticker"),
			Timestamp:      parseFloat(cell("timestamp")),
			CloseTime:      parseFloat(cell("close_time")),
			YesBid:         parseFloat(cell("yes_bid")),
			YesAsk:         parseFloat(cell("yes_ask")),
			NoBid:          parseFloat(cell("no_bid")),
			NoAsk:          parseFloat(cell("no_ask")),
			Volume:         parseFloat(cell("volume")),
			OpenInterest:   parseFloat(cell("open_interest")),
			LastTradePrice: parseFloat(cell("last_trade_price")),
			Title:          cell("title"),
			EventTicker:    cell("event_ticker"),
			Category:       cell("category"),
			Status:         cell("status"),
		})
	}

	return table, nil
}

// LoadSnapshotsFile reads a snapshot CSV from disk.
func LoadSnapshotsFile(path string) (*domain.SnapshotTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return LoadSnapshots(f)
}

// parseFloat coerces a cell to a float, nil when empty or malformed.
func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
