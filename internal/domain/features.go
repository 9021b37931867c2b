package domain

// FeatureRow extends a Snapshot with the derived indicator columns.
// Derived numeric fields are nil wherever an input they depend on was
// missing or a rolling window has not warmed up yet; input fields pass
// through unmodified. Corresponds to the market_features table in
// ClickHouse.
type FeatureRow struct {
	Snapshot

	// Microstructure, probability scale [0,1].
	HasYesBook   bool
	HasNoBook    bool
	MidYes       *float64
	MidNo        *float64
	SpreadYes    *float64
	SpreadNo     *float64
	RelSpreadYes *float64

	// Fused probability estimate and consistency signals.
	PYes      *float64 // normalized YES probability, falls back to MidYes
	Overround *float64 // MidYes + MidNo - 1, nil unless both mids present
	TTEHours  *float64 // hours until close_time

	// Counter changes.
	DVolume       *float64
	DOpenInterest *float64

	// Time-series features over PYes, windows counted in rows.
	DeltaP    *float64 // first difference
	ZP        *float64 // trailing z-score
	VolP      *float64 // trailing std of DeltaP
	RangeP    *float64 // trailing max - min
	MomentumP *float64 // PYes[i] - PYes[i-lag]
	EMAFast   *float64
	EMASlow   *float64
	EMADiff   *float64
	AccelP    *float64 // second difference

	// Flags. False when PYes is nil.
	NearBounds  bool // PYes within eps of 0 or 1
	IsUnchanged bool // PYes equal to previous row's PYes (cheap staleness proxy)
}

// DerivedColumns lists the derived output columns in their CSV order.
var DerivedColumns = []string{
	"has_yes_book", "has_no_book",
	"mid_yes", "mid_no", "spread_yes", "spread_no", "rel_spread_yes",
	"p_yes", "overround", "tte_hours",
	"volume", "open_interest",
	"d_volume", "d_open_interest",
	"delta_p", "z_p", "vol_p", "range_p", "momentum_p",
	"ema_fast", "ema_slow", "ema_diff", "accel_p",
	"near_bounds", "is_unchanged",
}
