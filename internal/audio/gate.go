// SPDX-License-Identifier: MIT
package audio

import "math"

const signBit = 1 << 31

func (e *Engine) EnableGate() {
	e.gateEnabled.Store(true)
}

func (e *Engine) DisableGate() {
	e.gateEnabled.Store(false)
}

// SetGateThreshold adjusts the gate threshold as a peak level.
// The value is in the range of 0.0-1.0 where 0=always open, 1=always closed.
func (e *Engine) SetGateThreshold(threshold float64) {
	if threshold < 0.0 {
		threshold = 0.0
	}
	if threshold > 1.0 {
		threshold = 1.0
	}

	e.gateThreshold.Store(math.Float32bits(float32(threshold)))
}

// GetGateThreshold returns the current gate threshold.
func (e *Engine) GetGateThreshold() float64 {
	return float64(math.Float32frombits(e.gateThreshold.Load()))
}

// GatedBlocks counts blocks withheld from the analyzer.
func (e *Engine) GatedBlocks() uint64 {
	return e.gatedBlocks.Load()
}

func (e *Engine) gateOpen(block []float32) bool {
	return peakBits(block) > int32(e.gateThreshold.Load())
}

// peakBits returns the bit pattern of the largest |sample| in block.
// Bit patterns of non-negative float32 values order the same way as the
// values, so the comparison runs on integers without branching.
func peakBits(block []float32) int32 {
	var maxAmplitude int32
	for _, s := range block {
		amplitude := int32(math.Float32bits(s) &^ signBit)
		diff := amplitude - maxAmplitude
		maxAmplitude += (diff & (diff >> 31)) ^ diff
	}
	return maxAmplitude
}

// Peak returns the largest absolute sample value in block.
func Peak(block []float32) float32 {
	return math.Float32frombits(uint32(peakBits(block)))
}
