//go:build !fastmath

package drive

import "math"

// shapeTanh computes the soft-clip transfer using standard library math.
func shapeTanh(x float64) float64 {
	return math.Tanh(x)
}
