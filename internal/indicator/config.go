package indicator

import "fmt"

// Config holds rolling window sizes and thresholds for the feature engine.
//
// Windows and lags are counted in snapshot rows per ticker, NOT wall-clock
// time. With one snapshot per minute, a window of 60 covers roughly the
// last hour; on an unevenly sampled series it covers the last 60 rows,
// whatever their span.
type Config struct {
	ZWindow     int // trailing window for the z-score of p_yes
	VolWindow   int // trailing window for the std of delta_p
	RangeWindow int // trailing window for max-min of p_yes
	MomentumLag int // row lag for momentum

	EMAFast int // fast EMA span
	EMASlow int // slow EMA span

	// NearBoundsEps flags rows where p_yes is below eps or above 1-eps;
	// execution quality is known to degrade near the bounds.
	NearBoundsEps float64
}

// DefaultConfig returns the standard window configuration.
func DefaultConfig() Config {
	return Config{
		ZWindow:       60,
		VolWindow:     60,
		RangeWindow:   60,
		MomentumLag:   30,
		EMAFast:       10,
		EMASlow:       30,
		NearBoundsEps: 0.05,
	}
}

// Validate checks that every window, lag and span is usable.
func (c Config) Validate() error {
	if c.ZWindow < 1 {
		return fmt.Errorf("z window must be >= 1, got %d", c.ZWindow)
	}
	if c.VolWindow < 1 {
		return fmt.Errorf("vol window must be >= 1, got %d", c.VolWindow)
	}
	if c.RangeWindow < 1 {
		return fmt.Errorf("range window must be >= 1, got %d", c.RangeWindow)
	}
	if c.MomentumLag < 1 {
		return fmt.Errorf("momentum lag must be >= 1, got %d", c.MomentumLag)
	}
	if c.EMAFast < 1 {
		return fmt.Errorf("fast EMA span must be >= 1, got %d", c.EMAFast)
	}
	if c.EMASlow < 1 {
		return fmt.Errorf("slow EMA span must be >= 1, got %d", c.EMASlow)
	}
	if c.NearBoundsEps <= 0 || c.NearBoundsEps >= 0.5 {
		return fmt.Errorf("near-bounds eps must be in (0, 0.5), got %g", c.NearBoundsEps)
	}
	return nil
}
