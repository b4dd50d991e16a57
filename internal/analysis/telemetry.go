// SPDX-License-Identifier: MIT
package analysis

import (
	"context"
	"errors"
	"time"

	"wtosc/internal/transport"
)

// Frame is one telemetry message describing the rendered output.
type Frame struct {
	Type       string             `json:"type"`
	Sequence   uint64             `json:"seq"`
	Timestamp  int64              `json:"timestamp"`
	Dominant   float64            `json:"dominant_hz"`
	RMS        float64            `json:"rms"`
	Peak       float64            `json:"peak"`
	Bands      map[string]float64 `json:"bands,omitempty"`
	Magnitudes []float32          `json:"magnitudes,omitempty"`
}

// Reporter samples the analyzers at a fixed interval and sends a Frame to a
// transport. Any of level and bands may be nil.
type Reporter struct {
	spectrum *SpectrumAnalyzer
	level    *LevelMeter
	bands    *BandMeter
	sink     transport.Transport
	interval time.Duration

	// IncludeMagnitudes adds the full spectrum to every frame.
	IncludeMagnitudes bool

	seq       uint64
	bandBuf   []float64
	magBuffer []float64
}

// NewReporter returns a Reporter. A non-positive interval defaults to
// 33ms (~30Hz).
func NewReporter(spectrum *SpectrumAnalyzer, level *LevelMeter, bands *BandMeter, sink transport.Transport, interval time.Duration) (*Reporter, error) {
	if spectrum == nil {
		return nil, errors.New("reporter requires a spectrum analyzer")
	}
	if sink == nil {
		return nil, errors.New("reporter requires a transport")
	}
	if interval <= 0 {
		interval = 33 * time.Millisecond
	}
	r := &Reporter{
		spectrum:  spectrum,
		level:     level,
		bands:     bands,
		sink:      sink,
		interval:  interval,
		magBuffer: make([]float64, spectrum.Bins()),
	}
	if bands != nil {
		r.bandBuf = make([]float64, len(bands.Bands()))
	}
	return r, nil
}

// Frame builds the next telemetry frame.
func (r *Reporter) Frame() Frame {
	r.seq++
	f := Frame{
		Type:      "spectrum",
		Sequence:  r.seq,
		Timestamp: time.Now().UnixNano(),
		Dominant:  r.spectrum.DominantFrequency(),
	}
	if r.level != nil {
		f.RMS = r.level.RMS()
		f.Peak = r.level.Peak()
	}
	if r.bands != nil && r.bands.Measure(r.bandBuf) == nil {
		f.Bands = make(map[string]float64, len(r.bandBuf))
		for i, band := range r.bands.Bands() {
			f.Bands[band.Name] = r.bandBuf[i]
		}
	}
	if r.IncludeMagnitudes && r.spectrum.MagnitudesInto(r.magBuffer) == nil {
		f.Magnitudes = make([]float32, len(r.magBuffer))
		for i, v := range r.magBuffer {
			f.Magnitudes[i] = float32(v)
		}
	}
	return f
}

// Run sends a frame every interval until ctx is cancelled. Send errors are
// logged and do not stop the loop.
func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logger.Infof("telemetry reporter started (interval %s)", r.interval)
	for {
		select {
		case <-ctx.Done():
			logger.Infof("telemetry reporter stopped after %d frames", r.seq)
			return nil
		case <-ticker.C:
			if err := r.sink.Send(r.Frame()); err != nil {
				logger.Warnf("telemetry send: %v", err)
			}
		}
	}
}
