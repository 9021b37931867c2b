package indicator

// Nil-propagating float helpers. Any nil operand makes the result nil,
// mirroring how missing inputs must never contaminate derived statistics.

func ptr(v float64) *float64 { return &v }

func fsub(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return ptr(*a - *b)
}

func fadd(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return ptr(*a + *b)
}

// fdiv divides a by b; a zero denominator yields nil, never infinity.
func fdiv(a, b *float64) *float64 {
	if a == nil || b == nil || *b == 0 {
		return nil
	}
	return ptr(*a / *b)
}

// centsThreshold separates cents-scale quotes from fractional ones.
// A value above it is read as cents; the threshold itself is read as a
// probability, keeping the boundary conservative toward the smaller
// interpretation.
const centsThreshold = 1.5

// normalizeProb converts a raw quote onto the [0,1] probability scale.
// Kalshi quotes usually arrive in cents (0..100), but fractional feeds
// exist too; the rule of thumb keeps the engine robust if the collector's
// format drifts.
func normalizeProb(x *float64) *float64 {
	if x == nil {
		return nil
	}
	if *x > centsThreshold {
		return ptr(*x / 100.0)
	}
	return ptr(*x)
}

// hasBook reports whether both sides of a quote carry resting interest.
// Zero or missing quotes mean "no resting interest", not "free".
func hasBook(bid, ask *float64) bool {
	return bid != nil && ask != nil && *bid > 0 && *ask > 0
}

// mid returns the normalized midpoint, defined only where a book exists.
func mid(bid, ask *float64) *float64 {
	if !hasBook(bid, ask) {
		return nil
	}
	return ptr((*normalizeProb(bid) + *normalizeProb(ask)) / 2.0)
}

// spread returns the normalized ask minus bid, defined only where a book
// exists.
func spread(bid, ask *float64) *float64 {
	if !hasBook(bid, ask) {
		return nil
	}
	return ptr(*normalizeProb(ask) - *normalizeProb(bid))
}

// relSpread returns spread/mid, guarded against a zero mid.
func relSpread(mid, spread *float64) *float64 {
	return fdiv(spread, mid)
}
