// SPDX-License-Identifier: MIT
package cmd

import (
	"math"
	"testing"

	"wtosc/internal/config"
	"wtosc/internal/oscillator"
)

func TestBuildTable(t *testing.T) {
	tests := []struct {
		name     string
		waveform string
		harm     int
		wantErr  bool
	}{
		{"sine", "sine", 0, false},
		{"band-limited saw", "sawtooth", 16, false},
		{"unknown shape", "wobble", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default().Oscillator
			cfg.Waveform = tt.waveform
			cfg.Harmonics = tt.harm
			cfg.TableSize = 256
			cfg.Normalize = true

			values, err := BuildTable(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("BuildTable error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(values) != 256 {
				t.Fatalf("len = %d, want 256", len(values))
			}
			var peak float64
			for _, v := range values {
				peak = max(peak, math.Abs(float64(v)))
			}
			if math.Abs(peak-1) > 1e-6 {
				t.Errorf("normalized peak = %v, want 1", peak)
			}
		})
	}
}

func TestBuildOscillator(t *testing.T) {
	cfg := config.Default().Oscillator
	cfg.TableSize = 512
	cfg.Frequency = 100
	cfg.Amplitude = 0.5
	cfg.Interpolation = "nearest"

	osc, err := BuildOscillator(cfg, 48000)
	if err != nil {
		t.Fatalf("BuildOscillator: %v", err)
	}
	if osc.State() != oscillator.StateReady {
		t.Errorf("state = %v, want ready", osc.State())
	}
	if osc.TableSize() != 512 {
		t.Errorf("table len = %d", osc.TableSize())
	}
	if osc.Frequency() != 100 || osc.Amplitude() != 0.5 {
		t.Errorf("params = %+v", osc.Snapshot())
	}
	if osc.Interpolation() != oscillator.InterpolationNearest {
		t.Errorf("interpolation = %v", osc.Interpolation())
	}

	cfg.Interpolation = "sinc"
	if _, err := BuildOscillator(cfg, 48000); err == nil {
		t.Error("bad interpolation accepted")
	}
	cfg.Interpolation = "linear"
	cfg.TableFile = "/nonexistent/cycle.wav"
	if _, err := BuildOscillator(cfg, 48000); err == nil {
		t.Error("missing table file accepted")
	}
}
