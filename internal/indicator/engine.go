package indicator

import (
	"kalshi-feature-lab/internal/domain"
)

// computeTickerFeatures derives every indicator for a single ticker
// partition. rows must already be in ascending time order; each output
// row extends the input row at the same index.
func computeTickerFeatures(rows []*domain.Snapshot, cfg Config) []*domain.FeatureRow {
	n := len(rows)
	out := make([]*domain.FeatureRow, n)

	// Per-row microstructure and probability estimate.
	pYes := make([]*float64, n)
	volume := make([]*float64, n)
	openInterest := make([]*float64, n)
	for i, s := range rows {
		fr := &domain.FeatureRow{Snapshot: *s}

		fr.HasYesBook = hasBook(s.YesBid, s.YesAsk)
		fr.HasNoBook = hasBook(s.NoBid, s.NoAsk)

		fr.MidYes = mid(s.YesBid, s.YesAsk)
		fr.MidNo = mid(s.NoBid, s.NoAsk)
		fr.SpreadYes = spread(s.YesBid, s.YesAsk)
		fr.SpreadNo = spread(s.NoBid, s.NoAsk)
		fr.RelSpreadYes = relSpread(fr.MidYes, fr.SpreadYes)

		fr.PYes = estimateProb(fr.MidYes, fr.MidNo)
		fr.Overround = overround(fr.MidYes, fr.MidNo)
		fr.TTEHours = tteHours(s.CloseTime, s.Timestamp)

		pYes[i] = fr.PYes
		volume[i] = s.Volume
		openInterest[i] = s.OpenInterest
		out[i] = fr
	}

	// Series features over the ordered probability estimates and counters.
	deltaP := diffSeries(pYes, 1)
	zP := rollingZScore(pYes, cfg.ZWindow)
	volP := rollingStd(deltaP, cfg.VolWindow)
	rangeP := rollingRange(pYes, cfg.RangeWindow)
	momentumP := diffSeries(pYes, cfg.MomentumLag)
	emaFast := ema(pYes, cfg.EMAFast)
	emaSlow := ema(pYes, cfg.EMASlow)
	accelP := diffSeries(deltaP, 1)
	dVolume := diffSeries(volume, 1)
	dOpenInterest := diffSeries(openInterest, 1)

	for i, fr := range out {
		fr.DeltaP = deltaP[i]
		fr.ZP = zP[i]
		fr.VolP = volP[i]
		fr.RangeP = rangeP[i]
		fr.MomentumP = momentumP[i]
		fr.EMAFast = emaFast[i]
		fr.EMASlow = emaSlow[i]
		fr.EMADiff = fsub(emaFast[i], emaSlow[i])
		fr.AccelP = accelP[i]
		fr.DVolume = dVolume[i]
		fr.DOpenInterest = dOpenInterest[i]

		if p := pYes[i]; p != nil {
			fr.NearBounds = *p < cfg.NearBoundsEps || *p > 1.0-cfg.NearBoundsEps
			if i > 0 && pYes[i-1] != nil {
				// Cheap staleness proxy: an unchanged estimate across
				// snapshots may be a stale quote. Not a true staleness
				// detector.
				fr.IsUnchanged = *p == *pYes[i-1]
			}
		}
	}

	return out
}
