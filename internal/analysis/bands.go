// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"
)

// FrequencyBand defines the name and frequency range for an energy band.
type FrequencyBand struct {
	Name   string
	LowHz  float64
	HighHz float64
}

// DefaultBands splits the audible range into six bands, the last ending at
// Nyquist.
func DefaultBands(sampleRate float64) []FrequencyBand {
	return []FrequencyBand{
		{Name: "sub", LowHz: 20, HighHz: 60},
		{Name: "bass", LowHz: 60, HighHz: 250},
		{Name: "lowMid", LowHz: 250, HighHz: 500},
		{Name: "mid", LowHz: 500, HighHz: 2000},
		{Name: "highMid", LowHz: 2000, HighHz: 4000},
		{Name: "treble", LowHz: 4000, HighHz: sampleRate / 2},
	}
}

// BandMeter reduces a spectrum to per-band RMS magnitudes. It reads from an
// FFTResultProvider at control rate and is not safe for concurrent use.
type BandMeter struct {
	provider FFTResultProvider
	bands    []FrequencyBand
	bandOf   []int // band index per bin, -1 when outside every band
	mags     []float64
	energy   []float64
	counts   []int
}

// NewBandMeter precomputes the bin to band mapping for provider.
func NewBandMeter(provider FFTResultProvider, bands []FrequencyBand) (*BandMeter, error) {
	if provider == nil {
		return nil, fmt.Errorf("band meter requires a non-nil FFTResultProvider")
	}
	bins := provider.FFTSize()/2 + 1
	m := &BandMeter{
		provider: provider,
		bands:    bands,
		bandOf:   make([]int, bins),
		mags:     make([]float64, bins),
		energy:   make([]float64, len(bands)),
		counts:   make([]int, len(bands)),
	}
	for i := range bins {
		m.bandOf[i] = -1
		freq := provider.FrequencyForBin(i)
		for b, band := range bands {
			if freq >= band.LowHz && freq < band.HighHz {
				m.bandOf[i] = b
				break
			}
		}
	}
	return m, nil
}

// Bands returns the configured bands.
func (m *BandMeter) Bands() []FrequencyBand {
	return m.bands
}

// Measure writes the RMS magnitude of each band into dst, which must have
// one element per band.
func (m *BandMeter) Measure(dst []float64) error {
	if len(dst) != len(m.bands) {
		return fmt.Errorf("destination slice length %d does not match band count %d", len(dst), len(m.bands))
	}
	if err := m.provider.MagnitudesInto(m.mags); err != nil {
		return err
	}

	clear(m.energy)
	clear(m.counts)
	for i, mag := range m.mags {
		if b := m.bandOf[i]; b >= 0 {
			m.energy[b] += mag * mag
			m.counts[b]++
		}
	}
	for b := range dst {
		dst[b] = 0
		if m.counts[b] > 0 {
			dst[b] = math.Sqrt(m.energy[b] / float64(m.counts[b]))
		}
	}
	return nil
}
