package indicator

// estimateProb fuses the YES and NO mids into one probability estimate.
// A frictionless binary market satisfies midYes + midNo = 1, so the
// normalized blend midYes/(midYes+midNo) self-corrects a one-sided
// pricing bias. When the blend is undefined (either mid missing, or a
// non-positive denominator) it falls back to midYes directly; with no
// YES mid either, the estimate is nil.
func estimateProb(midYes, midNo *float64) *float64 {
	if midYes != nil && midNo != nil {
		denom := *midYes + *midNo
		if denom > 0 {
			return ptr(*midYes / denom)
		}
	}
	if midYes != nil {
		return ptr(*midYes)
	}
	return nil
}

// overround measures pricing consistency: midYes + midNo - 1. Zero in a
// perfectly consistent two-sided market; deviations indicate friction or
// stale quotes. Nil unless both mids are present.
func overround(midYes, midNo *float64) *float64 {
	if midYes == nil || midNo == nil {
		return nil
	}
	return ptr(*midYes + *midNo - 1.0)
}

// tteHours returns the hours remaining until the market closes.
func tteHours(closeTime, timestamp *float64) *float64 {
	if closeTime == nil || timestamp == nil {
		return nil
	}
	return ptr((*closeTime - *timestamp) / 3600.0)
}
