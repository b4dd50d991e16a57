// SPDX-License-Identifier: MIT
package oscillator

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestIncrement(t *testing.T) {
	tests := []struct {
		desc       string
		freq       float64
		length     int
		sampleRate float64
		want       float64
	}{
		{"A4/512/44.1k", 440, 512, 44100, 440.0 * 512 / 44100},
		{"Unity", 1, 8, 8, 1},
		{"Negative", -220, 1024, 48000, -220.0 * 1024 / 48000},
		{"Zero", 0, 512, 44100, 0},
		{"Zero sample rate", 440, 512, 0, 0},
		{"Negative sample rate", 440, 512, -1, 0},
		{"NaN frequency", math.NaN(), 512, 44100, 0},
		{"Inf frequency", math.Inf(1), 512, 44100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := Increment(tt.freq, tt.length, tt.sampleRate)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Increment = %v, want %v", got, tt.want)
			}
		})
	}

	// 440 * 512 / 44100 = 5.10839...
	if got := Increment(440, 512, 44100); math.Abs(got-5.106) > 0.005 {
		t.Errorf("Increment(440, 512, 44100) = %.4f, want ~5.106", got)
	}
}

func TestPhaseWrapInvariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, n := range []int{1, 2, 7, 512, 4096} {
		p := NewPhase(n)
		for i := 0; i < 10000; i++ {
			// Mix of small, large, negative and sub-sample increments.
			inc := (rng.Float64()*2 - 1) * math.Pow(10, float64(rng.IntN(7)-3))
			p.Advance(inc)
			pos := p.Position()
			if pos < 0 || pos >= float64(n) {
				t.Fatalf("n=%d step %d: position %v out of [0, %d)", n, i, pos, n)
			}
		}
	}
}

func TestPhaseAdvanceReverse(t *testing.T) {
	p := NewPhase(8)
	p.Advance(-0.5)
	if got := p.Position(); got != 7.5 {
		t.Errorf("Position = %v, want 7.5", got)
	}
	p.Advance(-16)
	if got := p.Position(); got != 7.5 {
		t.Errorf("Position after two reverse cycles = %v, want 7.5", got)
	}
}

func TestPhaseAdvanceTinyNegative(t *testing.T) {
	p := NewPhase(512)
	p.Advance(-1e-18)
	if pos := p.Position(); pos < 0 || pos >= 512 {
		t.Errorf("Position = %v, out of range", pos)
	}
}

func TestPhaseAdvanceNonFinite(t *testing.T) {
	p := NewPhase(16)
	p.Set(3.25)
	p.Advance(math.NaN())
	p.Advance(math.Inf(-1))
	if got := p.Position(); got != 3.25 {
		t.Errorf("Position = %v, want 3.25 after non-finite increments", got)
	}
}

func TestPhaseResize(t *testing.T) {
	p := NewPhase(512)
	p.Set(128)
	p.Resize(1024)
	if got := p.Position(); got != 256 {
		t.Errorf("Position after resize = %v, want 256", got)
	}
	if p.Len() != 1024 {
		t.Errorf("Len = %d, want 1024", p.Len())
	}

	var zero Phase
	zero.Resize(4)
	if zero.Position() != 0 || zero.Len() != 4 {
		t.Errorf("resize of empty phase: pos=%v len=%d", zero.Position(), zero.Len())
	}
}

func TestPhaseSetWraps(t *testing.T) {
	p := NewPhase(10)
	p.Set(-3)
	if got := p.Position(); got != 7 {
		t.Errorf("Set(-3) = %v, want 7", got)
	}
	p.Set(23)
	if got := p.Position(); got != 3 {
		t.Errorf("Set(23) = %v, want 3", got)
	}
	p.Reset()
	if p.Position() != 0 {
		t.Error("Reset did not return to 0")
	}
}

func BenchmarkPhaseAdvance(b *testing.B) {
	p := NewPhase(2048)
	inc := Increment(440, 2048, 48000)
	b.ReportAllocs()
	for b.Loop() {
		p.Advance(inc)
	}
}
