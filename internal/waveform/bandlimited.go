// SPDX-License-Identifier: MIT
package waveform

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// BandLimited builds shape from at most harmonics partials with an inverse
// real FFT, then scales it to a peak of 1 (or [0, 1] for positive shapes).
// Harmonics above size/2-1 do not fit in the table and are dropped.
func BandLimited(shape Shape, size, harmonics int) ([]float32, error) {
	if size < 4 {
		return nil, fmt.Errorf("waveform: band-limited table needs at least 4 samples, got %d", size)
	}
	if harmonics < 1 {
		return nil, fmt.Errorf("waveform: harmonics must be positive, got %d", harmonics)
	}
	base := shape.bipolar()
	if base == Sine || base == Zero {
		return Generate(shape, size)
	}
	if _, ok := shapeNames[shape]; !ok {
		return nil, fmt.Errorf("waveform: unknown shape %d", shape)
	}

	maxHarmonic := min(harmonics, size/2-1)
	coeff := make([]complex128, size/2+1)
	for k := 1; k <= maxHarmonic; k++ {
		fk := float64(k)
		switch base {
		case Sawtooth:
			coeff[k] = sinTerm(-1 / fk)
		case ReverseSawtooth:
			coeff[k] = sinTerm(1 / fk)
		case Square:
			if k%2 == 1 {
				coeff[k] = sinTerm(-1 / fk)
			}
		case Triangle:
			if k%2 == 1 {
				coeff[k] = complex(-1/(2*fk*fk), 0)
			}
		}
	}

	fft := fourier.NewFFT(size)
	seq := fft.Sequence(nil, coeff)

	if peak := floats.Norm(seq, math.Inf(1)); peak > 0 {
		floats.Scale(1/peak, seq)
	}

	values := make([]float32, size)
	for i, v := range seq {
		values[i] = float32(v)
	}
	if shape.Positive() {
		toPositive(values)
	}
	return values, nil
}

// sinTerm is the coefficient whose real sequence is b*sin(k*theta).
func sinTerm(b float64) complex128 {
	return complex(0, -b/2)
}
