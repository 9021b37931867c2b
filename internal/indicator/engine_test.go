package indicator

import (
	"testing"

	"kalshi-feature-lab/internal/domain"
)

func testConfig() Config {
	return Config{
		ZWindow:       3,
		VolWindow:     3,
		RangeWindow:   3,
		MomentumLag:   2,
		EMAFast:       2,
		EMASlow:       3,
		NearBoundsEps: 0.05,
	}
}

func snap(ticker string, ts float64, yesBid, yesAsk, noBid, noAsk *float64) *domain.Snapshot {
	return &domain.Snapshot{
		Ticker:    ticker,
		Timestamp: fp(ts),
		CloseTime: fp(ts + 3600),
		YesBid:    yesBid,
		YesAsk:    yesAsk,
		NoBid:     noBid,
		NoAsk:     noAsk,
	}
}

// snapP builds a snapshot whose p_yes estimate comes out exactly p: a
// zero-width YES book at p and no NO book, so the estimate falls back to
// the YES mid.
func snapP(ticker string, ts, p float64) *domain.Snapshot {
	return snap(ticker, ts, fp(p), fp(p), nil, nil)
}

func TestComputeTickerFeatures_Microstructure(t *testing.T) {
	rows := []*domain.Snapshot{
		snap("MKT", 0, fp(40), fp(60), fp(38), fp(62)),
	}
	out := computeTickerFeatures(rows, testConfig())

	fr := out[0]
	if !fr.HasYesBook || !fr.HasNoBook {
		t.Error("expected both books present")
	}
	if fr.MidYes == nil || !approxEqual(*fr.MidYes, 0.50) {
		t.Errorf("expected YES mid 0.50, got %v", fr.MidYes)
	}
	if fr.SpreadYes == nil || !approxEqual(*fr.SpreadYes, 0.20) {
		t.Errorf("expected YES spread 0.20, got %v", fr.SpreadYes)
	}
	if fr.RelSpreadYes == nil || !approxEqual(*fr.RelSpreadYes, 0.40) {
		t.Errorf("expected relative spread 0.40, got %v", fr.RelSpreadYes)
	}
	if fr.PYes == nil || !approxEqual(*fr.PYes, 0.5) {
		t.Errorf("expected p_yes 0.5, got %v", fr.PYes)
	}
	if fr.Overround == nil || !approxEqual(*fr.Overround, 0.0) {
		t.Errorf("expected zero overround, got %v", fr.Overround)
	}
	if fr.TTEHours == nil || !approxEqual(*fr.TTEHours, 1.0) {
		t.Errorf("expected 1 hour to expiry, got %v", fr.TTEHours)
	}
}

func TestComputeTickerFeatures_SeriesAndFlags(t *testing.T) {
	rows := []*domain.Snapshot{
		snapP("MKT", 0, 0.25),
		snapP("MKT", 60, 0.5),
		snapP("MKT", 120, 0.75),
		snapP("MKT", 180, 1.0),
	}
	out := computeTickerFeatures(rows, testConfig())

	if out[0].DeltaP != nil {
		t.Errorf("expected nil delta on the first row, got %v", *out[0].DeltaP)
	}
	if out[1].DeltaP == nil || !approxEqual(*out[1].DeltaP, 0.25) {
		t.Errorf("expected delta 0.25, got %v", out[1].DeltaP)
	}

	// Window [0.25, 0.5, 0.75]: mean 0.5, sample std 0.25 → z = 1.
	if out[1].ZP != nil {
		t.Error("expected nil z-score during warm-up")
	}
	if out[2].ZP == nil || !approxEqual(*out[2].ZP, 1.0) {
		t.Errorf("expected z=1, got %v", out[2].ZP)
	}

	// Deltas are a constant 0.25, so their trailing std is zero.
	if out[3].VolP == nil || !approxEqual(*out[3].VolP, 0.0) {
		t.Errorf("expected zero vol of constant deltas, got %v", out[3].VolP)
	}

	if out[2].RangeP == nil || !approxEqual(*out[2].RangeP, 0.5) {
		t.Errorf("expected range 0.5, got %v", out[2].RangeP)
	}

	if out[1].MomentumP != nil {
		t.Error("expected nil momentum before the lag is covered")
	}
	if out[2].MomentumP == nil || !approxEqual(*out[2].MomentumP, 0.5) {
		t.Errorf("expected momentum 0.5, got %v", out[2].MomentumP)
	}

	// accel_p is the second difference; constant deltas give zero.
	if out[1].AccelP != nil {
		t.Error("expected nil accel on the second row")
	}
	if out[2].AccelP == nil || !approxEqual(*out[2].AccelP, 0.0) {
		t.Errorf("expected zero accel, got %v", out[2].AccelP)
	}

	if out[0].EMAFast == nil || !approxEqual(*out[0].EMAFast, 0.25) {
		t.Errorf("expected EMA seeded at 0.25, got %v", out[0].EMAFast)
	}
	if out[3].EMADiff == nil {
		t.Error("expected EMA diff once both spans have values")
	}

	// 0.25 and 1.0 are inside eps of neither bound with eps=0.05; 1.0 is
	// above 1-eps.
	if out[0].NearBounds {
		t.Error("0.25 should not be flagged near bounds")
	}
	if !out[3].NearBounds {
		t.Error("1.0 should be flagged near bounds")
	}
	for i, fr := range out {
		if fr.IsUnchanged {
			t.Errorf("row %d: strictly moving series should never flag unchanged", i)
		}
	}
}

func TestComputeTickerFeatures_UnchangedFlag(t *testing.T) {
	rows := []*domain.Snapshot{
		snapP("MKT", 0, 0.5),
		snapP("MKT", 60, 0.5),
		snapP("MKT", 120, 0.6),
	}
	out := computeTickerFeatures(rows, testConfig())

	if out[0].IsUnchanged {
		t.Error("first row has no predecessor to compare against")
	}
	if !out[1].IsUnchanged {
		t.Error("expected unchanged flag on the repeated estimate")
	}
	if out[2].IsUnchanged {
		t.Error("expected no flag after the estimate moves")
	}
}

func TestComputeTickerFeatures_FlagsFalseOnMissingEstimate(t *testing.T) {
	rows := []*domain.Snapshot{
		snapP("MKT", 0, 0.5),
		snap("MKT", 60, nil, nil, nil, nil),
		snapP("MKT", 120, 0.5),
	}
	out := computeTickerFeatures(rows, testConfig())

	if out[1].PYes != nil {
		t.Errorf("expected nil estimate without any book, got %v", *out[1].PYes)
	}
	if out[1].NearBounds || out[1].IsUnchanged {
		t.Error("flags must be false when the estimate is missing")
	}
	// Row 2's predecessor estimate is nil, so unchanged cannot fire even
	// though the value matches row 0.
	if out[2].IsUnchanged {
		t.Error("unchanged must compare against the immediate predecessor only")
	}

	// The gap also carries the EMA forward.
	if out[1].EMAFast == nil || !approxEqual(*out[1].EMAFast, 0.5) {
		t.Errorf("expected EMA carried across the gap, got %v", out[1].EMAFast)
	}
}

func TestComputeTickerFeatures_MissingCountersStayNil(t *testing.T) {
	rows := []*domain.Snapshot{
		snapP("MKT", 0, 0.5),
		snapP("MKT", 60, 0.6),
	}
	out := computeTickerFeatures(rows, testConfig())

	for i, fr := range out {
		if fr.DVolume != nil || fr.DOpenInterest != nil {
			t.Errorf("row %d: expected nil counter deltas without counter data", i)
		}
	}
}

func TestComputeTickerFeatures_CounterDeltas(t *testing.T) {
	a := snapP("MKT", 0, 0.5)
	a.Volume, a.OpenInterest = fp(100), fp(50)
	b := snapP("MKT", 60, 0.6)
	b.Volume, b.OpenInterest = fp(130), fp(45)

	out := computeTickerFeatures([]*domain.Snapshot{a, b}, testConfig())

	if out[1].DVolume == nil || !approxEqual(*out[1].DVolume, 30) {
		t.Errorf("expected volume delta 30, got %v", out[1].DVolume)
	}
	if out[1].DOpenInterest == nil || !approxEqual(*out[1].DOpenInterest, -5) {
		t.Errorf("expected open interest delta -5, got %v", out[1].DOpenInterest)
	}
}
