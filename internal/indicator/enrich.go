// Package indicator derives per-market, per-snapshot indicators from raw
// prediction-market quote data: book existence, mids and spreads, a fused
// probability estimate, and trailing time-series features computed per
// ticker with strict temporal causality. The engine is a pure batch
// transform: it tolerates missing and malformed quotes by propagating
// explicit nil markers, and never lets a row read data from a later time
// or another ticker.
package indicator

import (
	"fmt"
	"sort"
	"strings"

	"kalshi-feature-lab/internal/domain"
)

// MissingColumnsError reports required input columns absent from a table.
// The whole call fails before any computation; there is no partial output.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// Enrich computes indicator columns for every row of the table.
//
// The input is sorted once, globally and stably, by (ticker, timestamp)
// so that partitioning by ticker yields time-ordered groups with
// deterministic tie-breaking; rows with a non-numeric timestamp order
// after the numeric rows of their ticker. Each ticker partition is then
// processed independently and the results concatenated: one output row
// per input row, in sorted order, with input fields passed through
// unmodified.
func Enrich(table *domain.SnapshotTable, cfg Config) ([]*domain.FeatureRow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if missing := table.MissingRequired(); len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	sorted := sortRows(table.Rows)

	out := make([]*domain.FeatureRow, 0, len(sorted))
	for start := 0; start < len(sorted); {
		end := start
		for end < len(sorted) && sorted[end].Ticker == sorted[start].Ticker {
			end++
		}
		out = append(out, computeTickerFeatures(sorted[start:end], cfg)...)
		start = end
	}

	return out, nil
}

// sortRows returns a stably sorted copy of rows, ordered by ticker then
// timestamp. Ties keep their original relative input order; nil
// timestamps sort last within their ticker.
func sortRows(rows []*domain.Snapshot) []*domain.Snapshot {
	sorted := make([]*domain.Snapshot, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Ticker != b.Ticker {
			return a.Ticker < b.Ticker
		}
		switch {
		case a.Timestamp == nil:
			return false
		case b.Timestamp == nil:
			return true
		default:
			return *a.Timestamp < *b.Timestamp
		}
	})
	return sorted
}
