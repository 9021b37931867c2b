// Package tradability scores how executable a market snapshot is right
// now. Unlike the indicator engine it works on raw cent quotes with no
// history: every judgment is per-row, so it can run inside the collector
// before anything is stored.
package tradability

import (
	"math"

	"kalshi-feature-lab/internal/domain"
)

// Thresholds bound the binary tradability filter.
type Thresholds struct {
	MaxSpread       float64 // cents
	MaxRelSpread    float64
	MinVolume       float64
	MinOpenInterest float64
}

// DefaultThresholds returns the conservative filter settings.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxSpread:       6,
		MaxRelSpread:    0.15,
		MinVolume:       20,
		MinOpenInterest: 50,
	}
}

// Features bundles the quantities the filter and score read.
type Features struct {
	HasYesBook   bool
	HasNoBook    bool
	Spread       *float64 // cents, best available side
	RelSpread    *float64 // YES spread over YES mid
	Volume       float64
	OpenInterest float64
	BookFactor   float64
}

// Compute collects tradability features from a raw snapshot.
// Missing counters count as zero; quotes stay in cents.
func Compute(s *domain.Snapshot) Features {
	f := Features{
		HasYesBook:   hasBook(s.YesBid, s.YesAsk),
		HasNoBook:    hasBook(s.NoBid, s.NoAsk),
		Volume:       orZero(s.Volume),
		OpenInterest: orZero(s.OpenInterest),
	}

	// Prefer the YES book; fall back to the NO side when YES is empty.
	switch {
	case f.HasYesBook:
		sp := *s.YesAsk - *s.YesBid
		f.Spread = &sp
	case f.HasNoBook:
		sp := *s.NoAsk - *s.NoBid
		f.Spread = &sp
	}

	if f.HasYesBook {
		mid := (*s.YesBid + *s.YesAsk) / 2
		if mid > 0 {
			rel := (*s.YesAsk - *s.YesBid) / mid
			f.RelSpread = &rel
		}
	}

	// One-sided markets are penalised but not discarded.
	f.BookFactor = 0.7
	if f.HasYesBook && f.HasNoBook {
		f.BookFactor = 1.0
	}

	return f
}

// IsTradable answers whether a market is worth considering at all.
func IsTradable(s *domain.Snapshot, th Thresholds) bool {
	f := Compute(s)

	if !f.HasYesBook && !f.HasNoBook {
		return false
	}
	if f.Spread == nil || *f.Spread > th.MaxSpread {
		return false
	}
	if f.RelSpread != nil && *f.RelSpread > th.MaxRelSpread {
		return false
	}
	// Require evidence of participation, historical or current.
	if f.Volume < th.MinVolume && f.OpenInterest < th.MinOpenInterest {
		return false
	}
	return true
}

// Score estimates execution quality on a 0-100 scale. Higher means
// tighter pricing, more activity and a healthier book structure.
func Score(s *domain.Snapshot) int {
	f := Compute(s)

	if (!f.HasYesBook && !f.HasNoBook) || f.Spread == nil {
		return 0
	}

	absSp := spreadComponent(*f.Spread, 10)
	rel := 0.20
	if f.RelSpread != nil {
		rel = *f.RelSpread
	}
	relSp := relSpreadComponent(rel, 0.30)

	// Log scaling keeps large markets from dominating.
	volC := logSaturating(f.Volume, 2.0)
	oiC := logSaturating(f.OpenInterest, 3.0)

	score := 40*absSp + 15*relSp + 20*volC + 15*oiC + 10*f.BookFactor
	return int(math.Round(clamp(score, 0, 100)))
}

// spreadComponent maps an absolute spread in cents to [0,1].
// Spreads above maxOK are unusable.
func spreadComponent(spreadCents, maxOK float64) float64 {
	return clamp(1-spreadCents/maxOK, 0, 1)
}

// relSpreadComponent maps a relative spread to [0,1].
// Relative spreads above worst are prohibitively wide.
func relSpreadComponent(rel, worst float64) float64 {
	return clamp(1-rel/worst, 0, 1)
}

// logSaturating applies a diminishing-returns transform. Early activity
// matters much more than marginal late activity.
func logSaturating(x, denom float64) float64 {
	return clamp(math.Log10(1+math.Max(0, x))/denom, 0, 1)
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func hasBook(bid, ask *float64) bool {
	return bid != nil && ask != nil && *bid > 0 && *ask > 0
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
