package marketcsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"kalshi-feature-lab/internal/domain"
)

// WriteSnapshots renders snapshot rows in the collector's column layout.
func WriteSnapshots(w io.Writer, rows []*domain.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.CanonicalColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, s := range rows {
		rec := make([]string, 0, len(domain.CanonicalColumns))
		for _, col := range domain.CanonicalColumns {
			rec = append(rec, snapshotCell(s, col))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSnapshotsFile writes a snapshot CSV to disk.
func WriteSnapshotsFile(path string, rows []*domain.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteSnapshots(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteFeatures renders feature rows. The input columns come first, in
// their original order, followed by every derived column not already in
// the input; each output row extends its input row.
func WriteFeatures(w io.Writer, inputColumns []string, rows []*domain.FeatureRow) error {
	header := FeatureColumns(inputColumns)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, fr := range rows {
		rec := make([]string, 0, len(header))
		for _, col := range header {
			rec = append(rec, featureCell(fr, col))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFeaturesFile writes a feature CSV to disk.
func WriteFeaturesFile(path string, inputColumns []string, rows []*domain.FeatureRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteFeatures(f, inputColumns, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FeatureColumns returns the output header for a feature CSV: the input
// columns followed by the derived columns, deduplicated.
func FeatureColumns(inputColumns []string) []string {
	seen := make(map[string]bool, len(inputColumns)+len(domain.DerivedColumns))
	header := make([]string, 0, len(inputColumns)+len(domain.DerivedColumns))
	for _, c := range inputColumns {
		if !seen[c] {
			seen[c] = true
			header = append(header, c)
		}
	}
	for _, c := range domain.DerivedColumns {
		if !seen[c] {
			seen[c] = true
			header = append(header, c)
		}
	}
	return header
}

func snapshotCell(s *domain.Snapshot, col string) string {
	switch col {
	case "ticker":
		return s.Ticker
	case "timestamp":
		return formatFloat(s.Timestamp)
	case "close_time":
		return formatFloat(s.CloseTime)
	case "yes_bid":
		return formatFloat(s.YesBid)
	case "yes_ask":
		return formatFloat(s.YesAsk)
	case "no_bid":
		return formatFloat(s.NoBid)
	case "no_ask":
		return formatFloat(s.NoAsk)
	case "volume":
		return formatFloat(s.Volume)
	case "open_interest":
		return formatFloat(s.OpenInterest)
	case "last_trade_price":
		return formatFloat(s.LastTradePrice)
	case "title":
		return s.Title
	case "event_ticker":
		return s.EventTicker
	case "category":
		return s.Category
	case "status":
		return s.Status
	default:
		return ""
	}
}

func featureCell(fr *domain.FeatureRow, col string) string {
	switch col {
	case "has_yes_book":
		return formatBool(fr.HasYesBook)
	case "has_no_book":
		return formatBool(fr.HasNoBook)
	case "mid_yes":
		return formatFloat(fr.MidYes)
	case "mid_no":
		return formatFloat(fr.MidNo)
	case "spread_yes":
		return formatFloat(fr.SpreadYes)
	case "spread_no":
		return formatFloat(fr.SpreadNo)
	case "rel_spread_yes":
		return formatFloat(fr.RelSpreadYes)
	case "p_yes":
		return formatFloat(fr.PYes)
	case "overround":
		return formatFloat(fr.Overround)
	case "tte_hours":
		return formatFloat(fr.TTEHours)
	case "d_volume":
		return formatFloat(fr.DVolume)
	case "d_open_interest":
		return formatFloat(fr.DOpenInterest)
	case "delta_p":
		return formatFloat(fr.DeltaP)
	case "z_p":
		return formatFloat(fr.ZP)
	case "vol_p":
		return formatFloat(fr.VolP)
	case "range_p":
		return formatFloat(fr.RangeP)
	case "momentum_p":
		return formatFloat(fr.MomentumP)
	case "ema_fast":
		return formatFloat(fr.EMAFast)
	case "ema_slow":
		return formatFloat(fr.EMASlow)
	case "ema_diff":
		return formatFloat(fr.EMADiff)
	case "accel_p":
		return formatFloat(fr.AccelP)
	case "near_bounds":
		return formatBool(fr.NearBounds)
	case "is_unchanged":
		return formatBool(fr.IsUnchanged)
	default:
		return snapshotCell(&fr.Snapshot, col)
	}
}

// formatFloat renders a nullable float, empty cell when nil.
func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
