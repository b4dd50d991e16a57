// SPDX-License-Identifier: MIT
/*
Package oscillator implements a wavetable oscillator for real-time use.

An Oscillator reads through one cycle of a waveform Table at a rate set by
its frequency and detuning parameters and scales the result by amplitude.

Thread Safety:
  - Render is called from a single render goroutine (audio callback or
    offline loop). It takes no locks and does not allocate.
  - Parameter setters may be called from any goroutine at any time,
    including while a block is rendering. Each parameter is atomic.
  - Tables are published with an atomic pointer swap. SetWaveformValue
    edits the published table in place only while it holds the render
    slot, so a block always sees a table that no one is writing.
    SetupWaveform, SetWaveformValue and LoadTable must not be called from
    the render goroutine.
*/
package oscillator

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

// State is the lifecycle state of an Oscillator.
type State uint32

const (
	StateUninitialized State = iota // no table set up yet
	StateReady                      // table loaded, not rendering
	StateRendering                  // a block is in flight
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateRendering:
		return "rendering"
	default:
		return "unknown"
	}
}

// Oscillator is a mono wavetable oscillator. The embedded ParameterPort is
// the control surface for frequency, amplitude and detuning.
type Oscillator struct {
	*ParameterPort

	sampleRate    atomicFloat64
	table         atomic.Pointer[Table]
	state         atomic.Uint32
	playing       atomic.Bool
	resetPending  atomic.Bool
	interpolation atomic.Uint32

	// Owned by the render goroutine.
	phase Phase

	// Serializes table edits. Never taken by Render.
	mu      sync.Mutex
	staging *TableBuilder
	shared  bool // published table aliases staging
}

// Option configures an Oscillator at construction.
type Option func(*Oscillator) error

// WithParams sets the initial control parameters.
func WithParams(p Params) Option {
	return func(o *Oscillator) error {
		o.Store(p)
		return nil
	}
}

// WithInterpolation sets the initial interpolation mode.
func WithInterpolation(i Interpolation) Option {
	return func(o *Oscillator) error {
		o.SetInterpolation(i)
		return nil
	}
}

// WithTable publishes t before the oscillator is returned.
func WithTable(t *Table) Option {
	return func(o *Oscillator) error {
		return o.LoadTable(t)
	}
}

// New returns a playing oscillator with default parameters and no table.
func New(sampleRate float64, opts ...Option) (*Oscillator, error) {
	o := &Oscillator{ParameterPort: NewParameterPort(DefaultParams())}
	if err := o.SetSampleRate(sampleRate); err != nil {
		return nil, err
	}
	o.playing.Store(true)
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// SetSampleRate changes the rate the phase increment is computed against.
// It takes effect at the next rendered block.
func (o *Oscillator) SetSampleRate(sampleRate float64) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("oscillator: invalid sample rate %v", sampleRate)
	}
	o.sampleRate.Store(sampleRate)
	return nil
}

// SampleRate returns the current sample rate.
func (o *Oscillator) SampleRate() float64 {
	return o.sampleRate.Load()
}

// State returns the current lifecycle state.
func (o *Oscillator) State() State {
	return State(o.state.Load())
}

// Table returns a snapshot of the current waveform, or nil before set up.
// The returned Table is never modified by later edits.
func (o *Oscillator) Table() *Table {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.shared {
		return o.staging.Build()
	}
	return o.table.Load()
}

// TableSize returns the length of the published table, or 0 before set up.
func (o *Oscillator) TableSize() int {
	if t := o.table.Load(); t != nil {
		return t.Len()
	}
	return 0
}

// SetupWaveform replaces the table with size zeroed samples. Parameter
// values are kept. A failed call leaves the current table in place.
func (o *Oscillator) SetupWaveform(size int) error {
	b, err := NewTableBuilder(size)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.staging = b
	o.shared = true
	o.publish(b.share())
	return nil
}

// SetWaveformValue writes one sample of the table set up by SetupWaveform
// (or loaded by LoadTable). The write is visible from the next rendered
// block. While no block is rendering the published table is edited in
// place, so populating a table sample by sample costs O(1) per call.
func (o *Oscillator) SetWaveformValue(value float32, index int) error {
	return o.edit(func(b *TableBuilder) error {
		return b.Set(index, value)
	})
}

// SetWaveformValues writes values starting at index at. A write that would
// run past the end of the table is rejected as a whole.
func (o *Oscillator) SetWaveformValues(values []float32, at int) error {
	return o.edit(func(b *TableBuilder) error {
		return b.SetRange(at, values)
	})
}

// edit applies fn to the staging table and makes the result visible to the
// render path. The staging table doubles as the published one: while the
// render slot can be taken no block is reading it and fn writes in place.
// When a block is in flight the staging table is copied first.
func (o *Oscillator) edit(fn func(*TableBuilder) error) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.staging == nil {
		return ErrNotInitialized
	}

	if !o.shared {
		// Published table came from LoadTable and belongs to the caller.
		if err := fn(o.staging); err != nil {
			return err
		}
		o.shared = true
		o.publish(o.staging.share())
		return nil
	}

	if o.state.CompareAndSwap(uint32(StateReady), uint32(StateRendering)) {
		err := fn(o.staging)
		o.state.Store(uint32(StateReady))
		return err
	}

	b := o.staging.clone()
	if err := fn(b); err != nil {
		return err
	}
	o.staging = b
	o.publish(b.share())
	return nil
}

// SetWaveform builds a table from values and publishes it in one swap.
func (o *Oscillator) SetWaveform(values []float32) error {
	t, err := NewTable(values)
	if err != nil {
		return err
	}
	return o.LoadTable(t)
}

// LoadTable publishes a complete table. Later SetWaveformValue calls edit
// a copy of it.
func (o *Oscillator) LoadTable(t *Table) error {
	if t == nil {
		return fmt.Errorf("%w: nil table", ErrInvalidTableSize)
	}
	b := &TableBuilder{values: t.Values()}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.staging = b
	o.shared = false
	o.publish(t)
	return nil
}

func (o *Oscillator) publish(t *Table) {
	o.table.Store(t)
	o.state.CompareAndSwap(uint32(StateUninitialized), uint32(StateReady))
}

// Start resumes output.
func (o *Oscillator) Start() {
	o.playing.Store(true)
}

// Stop makes Render produce silence. The phase is held.
func (o *Oscillator) Stop() {
	o.playing.Store(false)
}

// IsPlaying reports whether Render produces sound.
func (o *Oscillator) IsPlaying() bool {
	return o.playing.Load()
}

// Reset asks the render goroutine to restart the cycle at the next block.
func (o *Oscillator) Reset() {
	o.resetPending.Store(true)
}

// SetInterpolation selects the table lookup used from the next block on.
func (o *Oscillator) SetInterpolation(i Interpolation) {
	o.interpolation.Store(uint32(i))
}

// Interpolation returns the current table lookup mode.
func (o *Oscillator) Interpolation() Interpolation {
	return Interpolation(o.interpolation.Load())
}

// Render fills out with the next len(out) samples.
//
// Parameters and sample rate are read once per block, so a change made
// while a block renders is heard from the next block. When an error is
// returned out is silent.
//
// Performance Critical:
//   - No locks, no allocations
//   - One atomic load per parameter per block
func (o *Oscillator) Render(out []float32) error {
	if !o.state.CompareAndSwap(uint32(StateReady), uint32(StateRendering)) {
		clear(out)
		if o.State() == StateUninitialized {
			return ErrNotInitialized
		}
		return ErrRenderBusy
	}
	defer o.state.Store(uint32(StateReady))

	t := o.table.Load()
	n := t.Len()
	if o.phase.Len() != n {
		o.phase.Resize(n)
	}
	if o.resetPending.Load() && o.resetPending.CompareAndSwap(true, false) {
		o.phase.Reset()
	}
	if !o.playing.Load() {
		clear(out)
		return nil
	}

	p := o.Snapshot()
	inc := Increment(p.EffectiveFrequency(), n, o.sampleRate.Load())
	amp := float32(p.Amplitude)
	sample := o.Interpolation().Sampler()
	values := t.values

	for i := range out {
		out[i] = sample(values, o.phase.pos) * amp
		o.phase.Advance(inc)
	}
	return nil
}
