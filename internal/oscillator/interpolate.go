// SPDX-License-Identifier: MIT
package oscillator

import (
	"fmt"
	"math"
	"strings"
)

// Interpolation selects how a table is read between sample points.
type Interpolation uint32

const (
	InterpolationLinear Interpolation = iota
	InterpolationCubic
	InterpolationNearest
)

// String returns the configuration name of the interpolation mode.
func (i Interpolation) String() string {
	switch i {
	case InterpolationLinear:
		return "linear"
	case InterpolationCubic:
		return "cubic"
	case InterpolationNearest:
		return "nearest"
	default:
		return "unknown"
	}
}

// ParseInterpolation converts a case-insensitive name into an Interpolation.
func ParseInterpolation(name string) (Interpolation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "linear":
		return InterpolationLinear, nil
	case "cubic", "hermite":
		return InterpolationCubic, nil
	case "nearest", "none":
		return InterpolationNearest, nil
	default:
		return InterpolationLinear, fmt.Errorf("unknown interpolation %q", name)
	}
}

// Sampler reads a table at a fractional phase in [0, len(values)).
type Sampler func(values []float32, phase float64) float32

// Sampler returns the lookup function for the mode. Unknown modes fall back
// to linear.
func (i Interpolation) Sampler() Sampler {
	switch i {
	case InterpolationCubic:
		return Cubic
	case InterpolationNearest:
		return Nearest
	default:
		return Linear
	}
}

// Sample reads t at phase using the interpolation mode.
func (i Interpolation) Sample(t *Table, phase float64) float32 {
	return i.Sampler()(t.values, phase)
}

// split returns floor(phase) wrapped into the table and the fractional part.
func split(n int, phase float64) (int, float32) {
	fl := math.Floor(phase)
	idx := int(fl) % n
	if idx < 0 {
		idx += n
	}
	return idx, float32(phase - fl)
}

// Linear blends the two samples around phase. The sample after the last
// one is the first one, so the cycle closes without a discontinuity.
func Linear(values []float32, phase float64) float32 {
	n := len(values)
	i0, frac := split(n, phase)
	i1 := i0 + 1
	if i1 == n {
		i1 = 0
	}
	v0 := values[i0]
	return v0 + (values[i1]-v0)*frac
}

// Cubic is a 4-point Catmull-Rom read with wrap-around neighbours.
func Cubic(values []float32, phase float64) float32 {
	n := len(values)
	i1, frac := split(n, phase)
	i0 := i1 - 1
	if i0 < 0 {
		i0 += n
	}
	i2 := i1 + 1
	if i2 >= n {
		i2 -= n
	}
	i3 := i2 + 1
	if i3 >= n {
		i3 -= n
	}
	y0, y1, y2, y3 := values[i0], values[i1], values[i2], values[i3]

	c0 := y1
	c1 := 0.5 * (y2 - y0)
	c2 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	c3 := 0.5*(y3-y0) + 1.5*(y1-y2)
	return ((c3*frac+c2)*frac+c1)*frac + c0
}

// Nearest returns the sample at floor(phase) without blending.
func Nearest(values []float32, phase float64) float32 {
	i, _ := split(len(values), phase)
	return values[i]
}
