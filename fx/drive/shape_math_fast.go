//go:build fastmath

package drive

import "github.com/meko-christian/algo-approx"

// shapeTanh computes the soft-clip transfer using fast approximation.
// Uses the identity: tanh(x) = 1 − 2/(e^(2x) + 1), saturating early so the
// exp argument stays in the approximation's accurate range.
func shapeTanh(x float64) float64 {
	if x > 10 {
		return 1
	}
	if x < -10 {
		return -1
	}

	return 1 - 2/(approx.FastExp(2*x)+1)
}
