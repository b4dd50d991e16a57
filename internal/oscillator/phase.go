// SPDX-License-Identifier: MIT
package oscillator

import "math"

// Phase is the fractional read position into a table of a given length.
// The position is always kept in [0, length).
type Phase struct {
	pos    float64
	length float64
}

// NewPhase returns a phase accumulator for a table of n samples.
func NewPhase(n int) Phase {
	return Phase{length: float64(n)}
}

// Increment converts an effective frequency into a per-sample phase
// increment for a table of tableLength samples.
func Increment(effectiveFrequency float64, tableLength int, sampleRate float64) float64 {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 1) {
		return 0
	}
	inc := effectiveFrequency * float64(tableLength) / sampleRate
	if math.IsNaN(inc) || math.IsInf(inc, 0) {
		return 0
	}
	return inc
}

// Position returns the current read position.
func (p *Phase) Position() float64 {
	return p.pos
}

// Len returns the table length the phase wraps at.
func (p *Phase) Len() int {
	return int(p.length)
}

// Set moves the read position, wrapping it into range.
func (p *Phase) Set(pos float64) {
	p.pos = p.wrap(pos)
}

// Reset moves the read position back to the start of the cycle.
func (p *Phase) Reset() {
	p.pos = 0
}

// Resize rescales the position for a table of n samples so playback
// continues from the same point in the cycle.
func (p *Phase) Resize(n int) {
	if float64(n) == p.length {
		return
	}
	if p.length > 0 {
		p.pos = p.pos * float64(n) / p.length
	}
	p.length = float64(n)
	p.pos = p.wrap(p.pos)
}

// Advance moves the read position by increment samples. Negative increments
// play the table backwards. Non-finite increments leave the position as is.
func (p *Phase) Advance(increment float64) {
	next := p.pos + increment
	if next >= 0 && next < p.length {
		p.pos = next
		return
	}
	if math.IsNaN(next) || math.IsInf(next, 0) {
		return
	}
	p.pos = p.wrap(next)
}

func (p *Phase) wrap(pos float64) float64 {
	if !(p.length > 0) || math.IsNaN(pos) || math.IsInf(pos, 0) {
		return 0
	}
	pos = math.Mod(pos, p.length)
	if pos < 0 {
		pos += p.length
	}
	// pos+length can round up to exactly length for tiny negative inputs.
	if pos >= p.length {
		pos = 0
	}
	return pos
}
