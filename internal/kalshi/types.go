package kalshi

import (
	"time"

	"kalshi-feature-lab/internal/domain"
)

// Market is one market object from the /markets endpoint.
// Quote fields are cents; absent fields stay nil.
type Market struct {
	Ticker       string   `json:"ticker"`
	EventTicker  string   `json:"event_ticker"`
	Title        string   `json:"title"`
	Category     string   `json:"category"`
	Status       string   `json:"status"`
	CloseTime    string   `json:"close_time"` // RFC3339
	YesBid       *float64 `json:"yes_bid"`
	YesAsk       *float64 `json:"yes_ask"`
	NoBid        *float64 `json:"no_bid"`
	NoAsk        *float64 `json:"no_ask"`
	Volume       *float64 `json:"volume"`
	OpenInterest *float64 `json:"open_interest"`
	LastPrice    *float64 `json:"last_price"`
}

// HasYesInterest reports whether the market has any resting YES-side
// orders. Markets without any are skipped at collection time.
func (m *Market) HasYesInterest() bool {
	return (m.YesBid != nil && *m.YesBid > 0) || (m.YesAsk != nil && *m.YesAsk > 0)
}

// Snapshot converts the market to a snapshot row stamped with the
// collection time. The RFC3339 close time becomes Unix seconds; an
// unparseable close time stays nil.
func (m *Market) Snapshot(collectedAt time.Time) *domain.Snapshot {
	ts := float64(collectedAt.UnixMilli()) / 1000.0
	snap := &domain.Snapshot{
		Ticker:         m.Ticker,
		Timestamp:      &ts,
		Title:          m.Title,
		EventTicker:    m.EventTicker,
		Category:       m.Category,
		Status:         m.Status,
		YesBid:         m.YesBid,
		YesAsk:         m.YesAsk,
		NoBid:          m.NoBid,
		NoAsk:          m.NoAsk,
		Volume:         m.Volume,
		OpenInterest:   m.OpenInterest,
		LastTradePrice: m.LastPrice,
	}
	if t, err := time.Parse(time.RFC3339, m.CloseTime); err == nil {
		ct := float64(t.Unix())
		snap.CloseTime = &ct
	}
	return snap
}

// marketsResponse is the paginated /markets payload.
type marketsResponse struct {
	Markets []Market `json:"markets"`
	Cursor  string   `json:"cursor"`
}
