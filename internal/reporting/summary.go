package reporting

import (
	"fmt"
	"strings"
	"time"

	"kalshi-feature-lab/internal/domain"
	"kalshi-feature-lab/internal/tradability"
)

// RunSummary aggregates one feature run for the markdown report.
type RunSummary struct {
	GeneratedAt      time.Time
	TickersProcessed int
	RowsIn           int
	RowsOut          int
	Errors           []string
	Coverage         Coverage
	Tickers          []TickerStat
}

// Coverage counts how many output rows carry each signal. A row with a
// nil probability estimate produces no time-series features, so PYes is
// the ceiling for everything downstream of it.
type Coverage struct {
	YesBook    int
	NoBook     int
	PYes       int
	ZP         int // warmed-up rows
	NearBounds int
	Tradable   int // rows passing the default execution-quality thresholds
}

// TickerStat is one ticker's slice of the run.
type TickerStat struct {
	Ticker  string
	Rows    int
	FirstTS *float64
	LastTS  *float64
}

// Summarize builds a RunSummary from enriched rows. rowsIn is the
// snapshot count fed into the run; errs carries per-ticker failures.
func Summarize(rows []*domain.FeatureRow, rowsIn int, errs []string) *RunSummary {
	s := &RunSummary{
		GeneratedAt: time.Now().UTC(),
		RowsIn:      rowsIn,
		RowsOut:     len(rows),
		Errors:      errs,
	}

	th := tradability.DefaultThresholds()
	var current *TickerStat
	for _, fr := range rows {
		if fr.HasYesBook {
			s.Coverage.YesBook++
		}
		if fr.HasNoBook {
			s.Coverage.NoBook++
		}
		if fr.PYes != nil {
			s.Coverage.PYes++
		}
		if fr.ZP != nil {
			s.Coverage.ZP++
		}
		if fr.NearBounds {
			s.Coverage.NearBounds++
		}
		if tradability.IsTradable(&fr.Snapshot, th) {
			s.Coverage.Tradable++
		}

		// Rows arrive grouped by ticker, so a plain scan suffices.
		if current == nil || current.Ticker != fr.Ticker {
			s.Tickers = append(s.Tickers, TickerStat{Ticker: fr.Ticker})
			current = &s.Tickers[len(s.Tickers)-1]
			current.FirstTS = fr.Timestamp
		}
		current.Rows++
		if fr.Timestamp != nil {
			current.LastTS = fr.Timestamp
		}
	}
	s.TickersProcessed = len(s.Tickers)

	return s
}

// RenderSummaryMarkdown renders the run summary as Markdown.
func RenderSummaryMarkdown(s *RunSummary) string {
	var sb strings.Builder

	sb.WriteString("# Feature Run Summary\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", s.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Tickers: %d | Rows in: %d | Rows out: %d\n\n",
		s.TickersProcessed, s.RowsIn, s.RowsOut))

	sb.WriteString("## Coverage\n\n")
	sb.WriteString("| Signal | Rows | Share |\n")
	sb.WriteString("|--------|------|-------|\n")
	sb.WriteString(coverageRow("YES book", s.Coverage.YesBook, s.RowsOut))
	sb.WriteString(coverageRow("NO book", s.Coverage.NoBook, s.RowsOut))
	sb.WriteString(coverageRow("p_yes", s.Coverage.PYes, s.RowsOut))
	sb.WriteString(coverageRow("z_p (warmed up)", s.Coverage.ZP, s.RowsOut))
	sb.WriteString(coverageRow("near bounds", s.Coverage.NearBounds, s.RowsOut))
	sb.WriteString(coverageRow("tradable", s.Coverage.Tradable, s.RowsOut))
	sb.WriteString("\n")

	sb.WriteString("## Tickers\n\n")
	if len(s.Tickers) > 0 {
		sb.WriteString("| Ticker | Rows | First TS | Last TS |\n")
		sb.WriteString("|--------|------|----------|--------|\n")
		for _, ts := range s.Tickers {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s |\n",
				ts.Ticker, ts.Rows, tsCell(ts.FirstTS), tsCell(ts.LastTS)))
		}
	} else {
		sb.WriteString("No tickers processed.\n")
	}
	sb.WriteString("\n")

	if len(s.Errors) > 0 {
		sb.WriteString("## Errors\n\n")
		for _, e := range s.Errors {
			sb.WriteString(fmt.Sprintf("- %s\n", e))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func coverageRow(name string, n, total int) string {
	share := "-"
	if total > 0 {
		share = fmt.Sprintf("%.1f%%", 100*float64(n)/float64(total))
	}
	return fmt.Sprintf("| %s | %d | %s |\n", name, n, share)
}

func tsCell(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f", *v)
}
