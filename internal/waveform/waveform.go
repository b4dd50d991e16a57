// SPDX-License-Identifier: MIT
/*
Package waveform builds single-cycle tables for the oscillator.

Shapes follow the usual synthesizer conventions: bipolar shapes span
[-1, 1], the "positive" variants span [0, 1]. Naive shapes have hard
corners and alias at high pitch; BandLimited builds the same shapes from a
finite harmonic series instead.
*/
package waveform

import (
	"fmt"
	"math"
	"strings"
)

// Shape names a standard waveform.
type Shape int

const (
	Sine Shape = iota
	Triangle
	Square
	Sawtooth
	ReverseSawtooth
	PositiveSine
	PositiveTriangle
	PositiveSquare
	PositiveSawtooth
	PositiveReverseSawtooth
	Zero
)

var shapeNames = map[Shape]string{
	Sine:                    "sine",
	Triangle:                "triangle",
	Square:                  "square",
	Sawtooth:                "sawtooth",
	ReverseSawtooth:         "reverse_sawtooth",
	PositiveSine:            "positive_sine",
	PositiveTriangle:        "positive_triangle",
	PositiveSquare:          "positive_square",
	PositiveSawtooth:        "positive_sawtooth",
	PositiveReverseSawtooth: "positive_reverse_sawtooth",
	Zero:                    "zero",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseShape converts a case-insensitive name into a Shape. Hyphens and
// underscores are interchangeable, and "saw" is accepted for sawtooth.
func ParseShape(name string) (Shape, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	if strings.HasSuffix(key, "saw") {
		key += "tooth"
	}
	for s, n := range shapeNames {
		if n == key {
			return s, nil
		}
	}
	return Sine, fmt.Errorf("unknown waveform %q", name)
}

// Positive reports whether the shape is the unipolar variant.
func (s Shape) Positive() bool {
	return s >= PositiveSine && s <= PositiveReverseSawtooth
}

// bipolar maps a positive shape to the bipolar shape it is derived from.
func (s Shape) bipolar() Shape {
	switch s {
	case PositiveSine:
		return Sine
	case PositiveTriangle:
		return Triangle
	case PositiveSquare:
		return Square
	case PositiveSawtooth:
		return Sawtooth
	case PositiveReverseSawtooth:
		return ReverseSawtooth
	default:
		return s
	}
}

// Generate returns size samples of one cycle of shape.
func Generate(shape Shape, size int) ([]float32, error) {
	if size <= 0 {
		return nil, fmt.Errorf("waveform: invalid size %d", size)
	}
	if _, ok := shapeNames[shape]; !ok {
		return nil, fmt.Errorf("waveform: unknown shape %d", shape)
	}

	values := make([]float32, size)
	n := float64(size)
	base := shape.bipolar()
	for i := range values {
		x := float64(i)
		var v float64
		switch base {
		case Sine:
			v = math.Sin(2 * math.Pi * x / n)
		case Triangle:
			if x < n/2 {
				v = 4*x/n - 1
			} else {
				v = 3 - 4*x/n
			}
		case Square:
			if x < n/2 {
				v = -1
			} else {
				v = 1
			}
		case Sawtooth:
			v = 2*x/n - 1
		case ReverseSawtooth:
			v = 1 - 2*x/n
		}
		values[i] = float32(v)
	}

	if shape.Positive() {
		toPositive(values)
	}
	return values, nil
}

func toPositive(values []float32) {
	for i, v := range values {
		values[i] = (v + 1) / 2
	}
}
