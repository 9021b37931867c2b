package indicator

import "testing"

func TestDiffSeries_FirstDifference(t *testing.T) {
	s := []*float64{fp(0.25), fp(0.5), nil, fp(1.0)}
	d := diffSeries(s, 1)

	if d[0] != nil {
		t.Errorf("expected nil at first row, got %v", *d[0])
	}
	if d[1] == nil || !approxEqual(*d[1], 0.25) {
		t.Errorf("expected 0.25, got %v", d[1])
	}
	if d[2] != nil {
		t.Errorf("expected nil where current value is missing, got %v", *d[2])
	}
	if d[3] != nil {
		t.Errorf("expected nil where previous value is missing, got %v", *d[3])
	}
}

func TestDiffSeries_Lag(t *testing.T) {
	s := []*float64{fp(0.25), fp(0.5), fp(0.75), fp(1.0)}
	d := diffSeries(s, 2)

	if d[0] != nil || d[1] != nil {
		t.Error("expected nil for the first lag rows")
	}
	if d[2] == nil || !approxEqual(*d[2], 0.5) {
		t.Errorf("expected 0.5, got %v", d[2])
	}
	if d[3] == nil || !approxEqual(*d[3], 0.5) {
		t.Errorf("expected 0.5, got %v", d[3])
	}
}

func TestRollingZScore_WarmupAndValue(t *testing.T) {
	// Window [0.25, 0.5, 0.75]: mean 0.5, sample std 0.25 → z = 1.
	s := []*float64{fp(0.25), fp(0.5), fp(0.75), fp(1.0)}
	z := rollingZScore(s, 3)

	if z[0] != nil || z[1] != nil {
		t.Error("expected nil during warm-up (first W-1 rows)")
	}
	if z[2] == nil || !approxEqual(*z[2], 1.0) {
		t.Errorf("expected z=1 at index 2, got %v", z[2])
	}
	if z[3] == nil || !approxEqual(*z[3], 1.0) {
		t.Errorf("expected z=1 at index 3, got %v", z[3])
	}
}

func TestRollingZScore_ConstantWindow(t *testing.T) {
	// Zero std must yield nil, not a division blow-up.
	s := []*float64{fp(0.5), fp(0.5), fp(0.5)}
	z := rollingZScore(s, 3)
	if z[2] != nil {
		t.Errorf("expected nil z-score for a constant window, got %v", *z[2])
	}
}

func TestRollingZScore_NilPropagation(t *testing.T) {
	s := []*float64{fp(0.25), nil, fp(0.75), fp(1.0), fp(0.5)}
	z := rollingZScore(s, 3)

	// Windows ending at 2 and 3 contain the nil at index 1.
	if z[2] != nil || z[3] != nil {
		t.Error("expected nil while the window contains a missing value")
	}
	if z[4] == nil {
		t.Error("expected a value once the window clears the missing entry")
	}
}

func TestRollingStd(t *testing.T) {
	s := []*float64{fp(0.25), fp(0.5), fp(0.75)}
	sd := rollingStd(s, 3)

	if sd[0] != nil || sd[1] != nil {
		t.Error("expected nil during warm-up")
	}
	if sd[2] == nil || !approxEqual(*sd[2], 0.25) {
		t.Errorf("expected sample std 0.25, got %v", sd[2])
	}
}

func TestRollingStd_WindowOfOneIsUndefined(t *testing.T) {
	// A sample deviation needs at least two observations; a window of
	// one must not degenerate to zero.
	s := []*float64{fp(0.25), fp(0.5), fp(0.75)}
	sd := rollingStd(s, 1)

	for i, v := range sd {
		if v != nil {
			t.Errorf("expected nil std at index %d for w=1, got %v", i, *v)
		}
	}
}

func TestRollingRange(t *testing.T) {
	s := []*float64{fp(0.25), fp(1.0), fp(0.5), fp(0.75)}
	r := rollingRange(s, 3)

	if r[0] != nil || r[1] != nil {
		t.Error("expected nil during warm-up")
	}
	if r[2] == nil || !approxEqual(*r[2], 0.75) {
		t.Errorf("expected range 0.75, got %v", r[2])
	}
	if r[3] == nil || !approxEqual(*r[3], 0.5) {
		t.Errorf("expected range 0.5, got %v", r[3])
	}
}

func TestEMA_Recurrence(t *testing.T) {
	// span=2 → alpha=2/3: 0.5, 0.56667, 0.65556.
	s := []*float64{fp(0.5), fp(0.6), fp(0.7)}
	e := ema(s, 2)

	if e[0] == nil || !approxEqual(*e[0], 0.5) {
		t.Errorf("expected seed 0.5, got %v", e[0])
	}
	want1 := 0.5 + 2.0/3.0*(0.6-0.5)
	if e[1] == nil || !approxEqual(*e[1], want1) {
		t.Errorf("expected %.6f, got %v", want1, e[1])
	}
	want2 := want1 + 2.0/3.0*(0.7-want1)
	if e[2] == nil || !approxEqual(*e[2], want2) {
		t.Errorf("expected %.6f, got %v", want2, e[2])
	}
}

func TestEMA_CarriesThroughGaps(t *testing.T) {
	// Leading nils stay nil; interior nils carry the previous EMA forward.
	s := []*float64{nil, fp(0.5), nil, fp(0.7)}
	e := ema(s, 2)

	if e[0] != nil {
		t.Errorf("expected nil before the first observation, got %v", *e[0])
	}
	if e[1] == nil || !approxEqual(*e[1], 0.5) {
		t.Errorf("expected seed 0.5, got %v", e[1])
	}
	if e[2] == nil || !approxEqual(*e[2], 0.5) {
		t.Errorf("expected carried value 0.5 across the gap, got %v", e[2])
	}
	want := 0.5 + 2.0/3.0*(0.7-0.5)
	if e[3] == nil || !approxEqual(*e[3], want) {
		t.Errorf("expected %.6f, got %v", want, e[3])
	}
}

func TestRollingWindowLargerThanSeries(t *testing.T) {
	s := []*float64{fp(0.25), fp(0.5)}
	for i, v := range rollingStd(s, 3) {
		if v != nil {
			t.Errorf("index %d: expected nil when W > N, got %v", i, *v)
		}
	}
}
