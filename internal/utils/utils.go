// Package utils holds tiny numeric helpers shared by the scoring engine
// and the aggregator. Confidence values live on [0,1] and are reported at
// two-decimal precision; centralizing the clamp and rounding keeps the two
// packages from drifting apart on float handling.
package utils

import "math"

// Clamp01 clamps v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamp clamps v to [lo,hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
