// SPDX-License-Identifier: MIT
package oscillator

import (
	"math"
	"testing"
)

var testTable = []float32{0.0, 0.5, 1.0, 0.25, -0.75, -1.0, -0.5, 0.125}

func TestLinearHitsSamplePoints(t *testing.T) {
	for k, want := range testTable {
		if got := Linear(testTable, float64(k)); got != want {
			t.Errorf("Linear(%d) = %v, want %v", k, got, want)
		}
	}
}

func TestLinearContinuity(t *testing.T) {
	const eps = 1e-9
	n := len(testTable)
	for k := 1; k <= n; k++ {
		below := Linear(testTable, float64(k)-eps)
		want := testTable[k%n]
		if math.Abs(float64(below-want)) > 1e-6 {
			t.Errorf("limit at %d from below = %v, want %v", k, below, want)
		}
	}
}

func TestLinearMidpoints(t *testing.T) {
	tests := []struct {
		phase float64
		want  float32
	}{
		{0.5, 0.25},
		{1.5, 0.75},
		{2.25, 0.8125},
		{7.5, 0.0625}, // blends the last sample with the first
	}
	for _, tt := range tests {
		if got := Linear(testTable, tt.phase); math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("Linear(%v) = %v, want %v", tt.phase, got, tt.want)
		}
	}
}

func TestCubicHitsSamplePoints(t *testing.T) {
	for k, want := range testTable {
		if got := Cubic(testTable, float64(k)); math.Abs(float64(got-want)) > 1e-6 {
			t.Errorf("Cubic(%d) = %v, want %v", k, got, want)
		}
	}
}

func TestCubicContinuity(t *testing.T) {
	const eps = 1e-9
	n := len(testTable)
	for k := 1; k <= n; k++ {
		below := Cubic(testTable, float64(k)-eps)
		want := testTable[k%n]
		if math.Abs(float64(below-want)) > 1e-5 {
			t.Errorf("limit at %d from below = %v, want %v", k, below, want)
		}
	}
}

func TestCubicIsExactOnLinearSegment(t *testing.T) {
	// Catmull-Rom reproduces straight lines between evenly spaced points.
	ramp := []float32{0, 1, 2, 3, 4, 5, 6, 7}
	if got := Cubic(ramp, 3.5); math.Abs(float64(got-3.5)) > 1e-6 {
		t.Errorf("Cubic(ramp, 3.5) = %v, want 3.5", got)
	}
}

func TestNearest(t *testing.T) {
	if got := Nearest(testTable, 2.99); got != testTable[2] {
		t.Errorf("Nearest(2.99) = %v, want %v", got, testTable[2])
	}
}

func TestSingleSampleTable(t *testing.T) {
	one := []float32{0.7}
	for _, s := range []Sampler{Linear, Cubic, Nearest} {
		for _, p := range []float64{0, 0.3, 0.999} {
			if got := s(one, p); math.Abs(float64(got-0.7)) > 1e-6 {
				t.Errorf("single-sample read at %v = %v, want 0.7", p, got)
			}
		}
	}
}

func TestParseInterpolation(t *testing.T) {
	tests := []struct {
		in      string
		want    Interpolation
		wantErr bool
	}{
		{"", InterpolationLinear, false},
		{"Linear", InterpolationLinear, false},
		{"cubic", InterpolationCubic, false},
		{"HERMITE", InterpolationCubic, false},
		{"nearest", InterpolationNearest, false},
		{"sinc", InterpolationLinear, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInterpolation(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if !tt.wantErr {
				if back, _ := ParseInterpolation(got.String()); back != got {
					t.Errorf("String() %q does not parse back", got.String())
				}
			}
		})
	}
}

func TestInterpolationSampleTable(t *testing.T) {
	table, _ := NewTable(testTable)
	if got := InterpolationLinear.Sample(table, 0.5); math.Abs(float64(got-0.25)) > 1e-6 {
		t.Errorf("Sample = %v, want 0.25", got)
	}
	if Interpolation(99).String() != "unknown" {
		t.Error("unexpected name for invalid mode")
	}
}

func BenchmarkInterpolation(b *testing.B) {
	table := make([]float32, 2048)
	for i := range table {
		table[i] = float32(math.Sin(2 * math.Pi * float64(i) / 2048))
	}
	for _, mode := range []Interpolation{InterpolationNearest, InterpolationLinear, InterpolationCubic} {
		b.Run(mode.String(), func(b *testing.B) {
			sample := mode.Sampler()
			phase := 0.0
			b.ReportAllocs()
			for b.Loop() {
				_ = sample(table, phase)
				phase += 5.1
				if phase >= 2048 {
					phase -= 2048
				}
			}
		})
	}
}
