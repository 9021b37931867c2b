// Package main enriches a snapshot CSV with indicator columns.
// Executes: load CSV → filter → enrich → write CSV
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"kalshi-feature-lab/internal/domain"
	"kalshi-feature-lab/internal/indicator"
	"kalshi-feature-lab/internal/marketcsv"
	"kalshi-feature-lab/internal/reporting"
)

func main() {
	input := flag.String("input", "", "Input snapshot CSV (required)")
	output := flag.String("output", "", "Output feature CSV (required)")
	zWindow := flag.Int("z-window", 60, "Rolling window for the z-score of p_yes")
	volWindow := flag.Int("vol-window", 60, "Rolling window for the std of delta_p")
	rangeWindow := flag.Int("range-window", 60, "Rolling window for max-min of p_yes")
	momentumLag := flag.Int("momentum-lag", 30, "Row lag for momentum")
	emaFast := flag.Int("ema-fast", 10, "Fast EMA span")
	emaSlow := flag.Int("ema-slow", 30, "Slow EMA span")
	onlyActive := flag.Bool("only-active", false, "Keep only rows with status ACTIVE")
	head := flag.Int("head", 0, "Print the first N enriched rows")
	flag.Parse()

	if *input == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "Usage: features -input snapshots.csv -output features.csv [flags]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	table, err := marketcsv.LoadSnapshotsFile(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", *input, err)
		os.Exit(1)
	}
	fmt.Printf("Loaded rows: %d\n", len(table.Rows))

	if *onlyActive {
		table.Rows = filterActive(table.Rows)
		fmt.Printf("Rows after status filter: %d\n", len(table.Rows))
	}

	cfg := indicator.DefaultConfig()
	cfg.ZWindow = *zWindow
	cfg.VolWindow = *volWindow
	cfg.RangeWindow = *rangeWindow
	cfg.MomentumLag = *momentumLag
	cfg.EMAFast = *emaFast
	cfg.EMASlow = *emaSlow

	rows, err := indicator.Enrich(table, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error enriching: %v\n", err)
		os.Exit(1)
	}

	if err := marketcsv.WriteFeaturesFile(*output, table.Columns, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *output, err)
		os.Exit(1)
	}

	fmt.Printf("Wrote rows: %d\n", len(rows))
	fmt.Printf("Columns now: %d\n", len(marketcsv.FeatureColumns(table.Columns)))

	if *head > 0 {
		fmt.Println()
		reporting.Preview(os.Stdout, rows, *head)
	}
}

// filterActive keeps rows whose status is ACTIVE, case-insensitively.
func filterActive(rows []*domain.Snapshot) []*domain.Snapshot {
	kept := rows[:0]
	for _, s := range rows {
		if strings.ToUpper(s.Status) == "ACTIVE" {
			kept = append(kept, s)
		}
	}
	return kept
}
