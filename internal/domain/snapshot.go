package domain

// Required input columns. A table missing any of these cannot be enriched.
var RequiredColumns = []string{
	"ticker", "timestamp", "close_time",
	"yes_bid", "yes_ask", "no_bid", "no_ask",
}

// Optional input columns. Absent columns become all-missing series.
var OptionalColumns = []string{"volume", "open_interest", "status"}

// CanonicalColumns is the full column set a store-backed table carries.
var CanonicalColumns = []string{
	"timestamp", "ticker", "title", "event_ticker", "category", "status",
	"close_time", "yes_bid", "yes_ask", "no_bid", "no_ask",
	"volume", "open_interest", "last_trade_price",
}

// Snapshot is one raw market snapshot row.
// Numeric fields are nil when the source value was absent or unparseable;
// quote fields keep their source scale (cents or fractional) until the
// indicator engine normalizes them.
type Snapshot struct {
	Ticker    string   // market identifier, groups rows
	Timestamp *float64 // collection time, Unix seconds
	CloseTime *float64 // expiry, Unix seconds

	YesBid *float64
	YesAsk *float64
	NoBid  *float64
	NoAsk  *float64

	Volume       *float64
	OpenInterest *float64

	// Pass-through metadata from the collector. Not used by the engine.
	Title          string
	EventTicker    string
	Category       string
	Status         string
	LastTradePrice *float64
}

// SnapshotTable is a batch of snapshot rows together with the column set
// of the source the rows came from. The column list drives required /
// optional column validation; rows only carry parsed values.
type SnapshotTable struct {
	Columns []string
	Rows    []*Snapshot
}

// HasColumn reports whether the source table carried the named column.
func (t *SnapshotTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// MissingRequired returns the required columns absent from the table,
// in RequiredColumns order.
func (t *SnapshotTable) MissingRequired() []string {
	var missing []string
	for _, c := range RequiredColumns {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}
