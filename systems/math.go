package systems

import "math"

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Wrap01 wraps v onto the half-open unit interval. True wraparound, not a
// clamp: 1.2 maps to 0.2 and -0.1 maps to 0.9.
func Wrap01(v float64) float64 {
	m := math.Mod(v, 1)
	if m < 0 {
		m += 1
	}
	return m
}

// Band maps a normalized value in [0,1] linearly into [lo, hi].
func Band(norm, lo, hi float64) float64 {
	return lo + Clamp(norm, 0, 1)*(hi-lo)
}
