// SPDX-License-Identifier: MIT
/*
Package audio hosts an Oscillator on a real-time output device.

The Engine renders mono blocks from the oscillator, duplicates them to every
output channel and optionally feeds a level gate, a spectrum analyzer and a
WAV recorder. Output backends are PortAudio (default), oto and beep.

Thread Safety:
- Process is the render callback and runs on one goroutine at a time
- Pre-allocates buffers to avoid GC in hot path
- Gate, recording and analysis state are atomic
*/
package audio

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"wtosc/internal/config"
	"wtosc/internal/log"
	"wtosc/internal/oscillator"
)

var logger = log.With("engine")

// Analyzer consumes rendered mono blocks. Process must not block.
type Analyzer interface {
	Process(block []float32)
}

// Output is a running device stream that pulls frames from the Engine.
type Output interface {
	Start() error
	Stop() error
	Close() error
}

type Engine struct {
	config     *config.Config
	osc        *oscillator.Oscillator
	channels   int
	sampleRate float64

	// Mono render buffer, one block long.
	mono []float32

	analyzer Analyzer

	// Level gate in front of the analyzer.
	gateEnabled   atomic.Bool
	gateThreshold atomic.Uint32 // float32 bits of the peak threshold

	// Recording state and buffers.
	isRecording atomic.Bool
	recMu       sync.Mutex
	rec         *recorder

	output Output

	renderErrors atomic.Uint64
	gatedBlocks  atomic.Uint64
}

// EngineOption configures an Engine at construction.
type EngineOption func(*Engine)

// WithAnalyzer feeds every rendered block that passes the gate to a.
func WithAnalyzer(a Analyzer) EngineOption {
	return func(e *Engine) {
		e.analyzer = a
	}
}

// NewEngine prepares an engine for osc. No device is opened until Start.
// The oscillator's sample rate is set from the audio configuration.
func NewEngine(cfg *config.Config, osc *oscillator.Oscillator, opts ...EngineOption) (*Engine, error) {
	if osc == nil {
		return nil, errors.New("audio: nil oscillator")
	}
	if err := osc.SetSampleRate(cfg.Audio.SampleRate); err != nil {
		return nil, err
	}

	channels := cfg.Audio.Channels
	if cfg.Audio.Backend == config.BackendBeep && channels != 2 {
		logger.Warnf("beep backend is stereo, ignoring channels=%d", channels)
		channels = 2
	}

	e := &Engine{
		config:     cfg,
		osc:        osc,
		channels:   channels,
		sampleRate: cfg.Audio.SampleRate,
		mono:       make([]float32, cfg.Audio.FramesPerBuffer),
	}
	for _, opt := range opts {
		opt(e)
	}

	if cfg.Audio.GateThreshold > 0 {
		e.SetGateThreshold(cfg.Audio.GateThreshold)
		e.EnableGate()
	}

	return e, nil
}

// Oscillator returns the oscillator driven by the engine.
func (e *Engine) Oscillator() *oscillator.Oscillator {
	return e.osc
}

// Channels is the number of interleaved output channels.
func (e *Engine) Channels() int {
	return e.channels
}

func (e *Engine) SampleRate() float64 {
	return e.sampleRate
}

// RenderErrors counts blocks the oscillator refused to render.
func (e *Engine) RenderErrors() uint64 {
	return e.renderErrors.Load()
}

// Start opens the configured backend and begins playback.
func (e *Engine) Start() error {
	if e.output != nil {
		return errors.New("audio: engine already started")
	}

	var (
		out Output
		err error
	)
	switch e.config.Audio.Backend {
	case config.BackendOto:
		out, err = newOtoOutput(e)
	case config.BackendBeep:
		out, err = newBeepOutput(e)
	default:
		out, err = newPortAudioOutput(e)
	}
	if err != nil {
		return fmt.Errorf("open %s output: %w", e.config.Audio.Backend, err)
	}

	if err := out.Start(); err != nil {
		out.Close()
		return fmt.Errorf("start %s output: %w", e.config.Audio.Backend, err)
	}
	e.output = out

	logger.Infof("playing on %s: %.0f Hz, %d channels, %d frames per buffer",
		e.config.Audio.Backend, e.sampleRate, e.channels, len(e.mono))
	return nil
}

// Stop halts playback and releases the device.
func (e *Engine) Stop() error {
	if e.output == nil {
		return nil
	}
	out := e.output
	e.output = nil

	if err := out.Stop(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Close stops recording and playback.
func (e *Engine) Close() error {
	return errors.Join(e.StopRecording(), e.Stop())
}

// Process fills out with interleaved frames. It is the render callback for
// every backend and for offline rendering.
// Performance Critical:
// - Uses pre-allocated buffers only
// - No dynamic allocations in the hot path
func (e *Engine) Process(out []float32) {
	ch := e.channels
	frames := len(out) / ch

	for start := 0; start < frames; {
		n := min(frames-start, len(e.mono))
		block := e.mono[:n]

		if err := e.osc.Render(block); err != nil {
			e.renderErrors.Add(1)
		}

		base := start * ch
		for i, s := range block {
			for c := range ch {
				out[base+i*ch+c] = s
			}
		}

		e.analyze(block)
		start += n
	}

	// Trailing partial frame, if any.
	clear(out[frames*ch:])

	if e.isRecording.Load() {
		e.record(out[:frames*ch])
	}
}

// analyze runs the analyzer on blocks that pass the gate.
func (e *Engine) analyze(block []float32) {
	if e.analyzer == nil {
		return
	}
	if e.gateEnabled.Load() && !e.gateOpen(block) {
		e.gatedBlocks.Add(1)
		return
	}
	e.analyzer.Process(block)
}
