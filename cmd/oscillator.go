// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"

	"wtosc/internal/config"
	"wtosc/internal/log"
	"wtosc/internal/oscillator"
	"wtosc/internal/waveform"
)

// BuildTable produces the wavetable described by cfg: a WAV cycle when
// TableFile is set, otherwise a generated or band-limited shape.
func BuildTable(cfg config.OscillatorConfig) ([]float32, error) {
	if cfg.TableFile != "" {
		values, err := waveform.LoadWAV(cfg.TableFile, cfg.TableSize)
		if err != nil {
			return nil, err
		}
		log.Debugf("loaded %d-sample cycle from %s", len(values), cfg.TableFile)
		return values, nil
	}

	shape, err := waveform.ParseShape(cfg.Waveform)
	if err != nil {
		return nil, err
	}

	var values []float32
	if cfg.Harmonics > 0 {
		values, err = waveform.BandLimited(shape, cfg.TableSize, cfg.Harmonics)
	} else {
		values, err = waveform.Generate(shape, cfg.TableSize)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Normalize {
		waveform.Normalize(values)
	}
	return values, nil
}

// BuildOscillator returns a playing oscillator with the table, parameters
// and interpolation from cfg.
func BuildOscillator(cfg config.OscillatorConfig, sampleRate float64) (*oscillator.Oscillator, error) {
	interp, err := oscillator.ParseInterpolation(cfg.Interpolation)
	if err != nil {
		return nil, err
	}
	values, err := BuildTable(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build wavetable: %w", err)
	}
	table, err := oscillator.NewTable(values)
	if err != nil {
		return nil, err
	}

	return oscillator.New(sampleRate,
		oscillator.WithTable(table),
		oscillator.WithParams(cfg.Params),
		oscillator.WithInterpolation(interp),
	)
}
