// SPDX-License-Identifier: MIT
package waveform

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Normalize scales values in place so the largest magnitude is 1. An all
// zero table is left unchanged. It returns the original peak.
func Normalize(values []float32) float64 {
	x := widen(values)
	peak := floats.Norm(x, math.Inf(1))
	if peak == 0 {
		return 0
	}
	floats.Scale(1/peak, x)
	narrow(values, x)
	return peak
}

// RemoveDC subtracts the mean in place and returns it.
func RemoveDC(values []float32) float64 {
	if len(values) == 0 {
		return 0
	}
	x := widen(values)
	mean := floats.Sum(x) / float64(len(x))
	floats.AddConst(-mean, x)
	narrow(values, x)
	return mean
}

func widen(values []float32) []float64 {
	x := make([]float64, len(values))
	for i, v := range values {
		x[i] = float64(v)
	}
	return x
}

func narrow(dst []float32, x []float64) {
	for i, v := range x {
		dst[i] = float32(v)
	}
}
