// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"sync/atomic"
)

// LevelMeter tracks the RMS and peak level of the most recent block.
type LevelMeter struct {
	rms  atomic.Uint64
	peak atomic.Uint64
}

var _ AudioProcessor = (*LevelMeter)(nil)

func (m *LevelMeter) Process(block []float32) {
	if len(block) == 0 {
		return
	}
	var sumSquare, peak float64
	for _, s := range block {
		v := float64(s)
		sumSquare += v * v
		peak = max(peak, math.Abs(v))
	}
	m.rms.Store(math.Float64bits(math.Sqrt(sumSquare / float64(len(block)))))
	m.peak.Store(math.Float64bits(peak))
}

// RMS of the last processed block.
func (m *LevelMeter) RMS() float64 {
	return math.Float64frombits(m.rms.Load())
}

// Peak absolute sample of the last processed block.
func (m *LevelMeter) Peak() float64 {
	return math.Float64frombits(m.peak.Load())
}

// Decibels converts a linear level to dBFS, flooring silence at -120.
func Decibels(level float64) float64 {
	if level <= 1e-6 {
		return -120
	}
	return 20 * math.Log10(level)
}
