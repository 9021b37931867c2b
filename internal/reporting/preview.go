// Package reporting renders feature rows for humans: a terminal
// preview table and a markdown run summary.
package reporting

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"kalshi-feature-lab/internal/domain"
)

// previewColumns is the terminal preview column set.
var previewColumns = []string{
	"timestamp", "ticker", "mid_yes", "mid_no", "p_yes",
	"spread_yes", "rel_spread_yes", "overround",
	"delta_p", "z_p", "vol_p", "ema_diff", "tte_hours",
}

// Preview renders the first head feature rows as a table.
func Preview(out io.Writer, rows []*domain.FeatureRow, head int) {
	if head <= 0 || len(rows) == 0 {
		return
	}
	if head > len(rows) {
		head = len(rows)
	}

	table := tablewriter.NewWriter(out)
	table.Header("ts", "ticker", "mid_yes", "mid_no", "p_yes",
		"spread_yes", "rel_spread", "overround",
		"delta_p", "z_p", "vol_p", "ema_diff", "tte_h")

	for _, fr := range rows[:head] {
		rec := make([]any, len(previewColumns))
		for i, col := range previewColumns {
			rec[i] = previewCell(fr, col)
		}
		table.Append(rec...)
	}

	table.Render()
}

func previewCell(fr *domain.FeatureRow, col string) string {
	switch col {
	case "timestamp":
		return fmtFloat(fr.Timestamp)
	case "ticker":
		return fr.Ticker
	case "mid_yes":
		return fmtFloat(fr.MidYes)
	case "mid_no":
		return fmtFloat(fr.MidNo)
	case "p_yes":
		return fmtFloat(fr.PYes)
	case "spread_yes":
		return fmtFloat(fr.SpreadYes)
	case "rel_spread_yes":
		return fmtFloat(fr.RelSpreadYes)
	case "overround":
		return fmtFloat(fr.Overround)
	case "delta_p":
		return fmtFloat(fr.DeltaP)
	case "z_p":
		return fmtFloat(fr.ZP)
	case "vol_p":
		return fmtFloat(fr.VolP)
	case "ema_diff":
		return fmtFloat(fr.EMADiff)
	case "tte_hours":
		return fmtFloat(fr.TTEHours)
	default:
		return ""
	}
}

// fmtFloat renders a nullable float for display.
func fmtFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}
