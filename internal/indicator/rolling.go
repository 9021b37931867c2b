package indicator

import "math"

// Rolling statistics over nullable series. Every window is a trailing
// window ending at the current row: a statistic at index i reads only
// indices <= i, never centered or future-looking data. A statistic
// requiring W observations is nil for the first W-1 rows and for any row
// whose trailing window contains a nil.
//
// Windows here are small constants, so the naive O(N*W) trailing
// recomputation is used instead of a sliding-window algorithm.

// diffSeries returns s[i] - s[i-lag]; nil for the first lag rows and
// wherever either operand is nil. lag=1 gives the first difference.
func diffSeries(s []*float64, lag int) []*float64 {
	out := make([]*float64, len(s))
	for i := lag; i < len(s); i++ {
		out[i] = fsub(s[i], s[i-lag])
	}
	return out
}

// window returns the trailing w values ending at i, or nil if the window
// is not yet full or contains a nil.
func window(s []*float64, i, w int) []float64 {
	if i+1 < w {
		return nil
	}
	vals := make([]float64, 0, w)
	for j := i - w + 1; j <= i; j++ {
		if s[j] == nil {
			return nil
		}
		vals = append(vals, *s[j])
	}
	return vals
}

// meanStd computes the mean and sample standard deviation (n-1
// denominator) of vals. Std is 0 for a single observation.
func meanStd(vals []float64) (mean, std float64) {
	n := len(vals)
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	mean = sum / float64(n)
	if n < 2 {
		return mean, 0
	}
	sumSq := 0.0
	for _, v := range vals {
		d := v - mean
		sumSq += d * d
	}
	return mean, math.Sqrt(sumSq / float64(n-1))
}

// rollingZScore returns (s - trailing mean) / trailing sample std over
// window w. A zero std (constant window) yields nil, not infinity.
func rollingZScore(s []*float64, w int) []*float64 {
	out := make([]*float64, len(s))
	for i := range s {
		vals := window(s, i, w)
		if vals == nil {
			continue
		}
		mean, std := meanStd(vals)
		if std == 0 {
			continue
		}
		out[i] = ptr((*s[i] - mean) / std)
	}
	return out
}

// rollingStd returns the trailing sample standard deviation over window w.
// A single observation has no sample deviation, so w=1 yields all nil.
func rollingStd(s []*float64, w int) []*float64 {
	out := make([]*float64, len(s))
	if w < 2 {
		return out
	}
	for i := range s {
		vals := window(s, i, w)
		if vals == nil {
			continue
		}
		_, std := meanStd(vals)
		out[i] = ptr(std)
	}
	return out
}

// rollingRange returns trailing max minus trailing min over window w.
func rollingRange(s []*float64, w int) []*float64 {
	out := make([]*float64, len(s))
	for i := range s {
		vals := window(s, i, w)
		if vals == nil {
			continue
		}
		lo, hi := vals[0], vals[0]
		for _, v := range vals[1:] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		out[i] = ptr(hi - lo)
	}
	return out
}

// ema computes the recursive exponential moving average with smoothing
// alpha = 2/(span+1), seeded with the first observed value. Unlike the
// windowed statistics, the EMA never becomes undefined once seeded: a nil
// input carries the previous EMA forward. Rows before the first
// observation are nil.
func ema(s []*float64, span int) []*float64 {
	out := make([]*float64, len(s))
	alpha := 2.0 / (float64(span) + 1.0)
	var prev *float64
	for i, v := range s {
		if prev == nil {
			if v != nil {
				prev = ptr(*v)
			}
		} else if v != nil {
			prev = ptr(alpha**v + (1-alpha)**prev)
		}
		if prev != nil {
			out[i] = ptr(*prev)
		}
	}
	return out
}
