package usecase

import "math"

// round2 rounds a monetary amount to 2 decimals, half away from zero.
// Preview and commit share this single rule so the discount shown to the
// customer is exactly the discount charged.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
