// SPDX-License-Identifier: MIT
package oscillator

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"
)

// Default parameter values.
const (
	DefaultFrequency          = 440.0
	DefaultAmplitude          = 1.0
	DefaultDetuningOffset     = 0.0
	DefaultDetuningMultiplier = 1.0
)

// Parameter names accepted by ParameterPort.Set and ParameterPort.Get.
const (
	ParamFrequency          = "frequency"
	ParamAmplitude          = "amplitude"
	ParamDetuningOffset     = "detuning_offset"
	ParamDetuningMultiplier = "detuning_multiplier"
)

// ParamNames lists the control parameters in display order.
var ParamNames = []string{
	ParamFrequency,
	ParamAmplitude,
	ParamDetuningOffset,
	ParamDetuningMultiplier,
}

// Params is a plain copy of the four control parameters.
type Params struct {
	Frequency          float64 `json:"frequency" yaml:"frequency"`
	Amplitude          float64 `json:"amplitude" yaml:"amplitude"`
	DetuningOffset     float64 `json:"detuning_offset" yaml:"detuning_offset"`
	DetuningMultiplier float64 `json:"detuning_multiplier" yaml:"detuning_multiplier"`
}

// DefaultParams returns concert pitch at unity gain with no detuning.
func DefaultParams() Params {
	return Params{
		Frequency:          DefaultFrequency,
		Amplitude:          DefaultAmplitude,
		DetuningOffset:     DefaultDetuningOffset,
		DetuningMultiplier: DefaultDetuningMultiplier,
	}
}

// EffectiveFrequency applies the detuning multiplier and offset.
func (p Params) EffectiveFrequency() float64 {
	return p.Frequency*p.DetuningMultiplier + p.DetuningOffset
}

// atomicFloat64 stores a float64 as its bit pattern so loads and stores are
// single lock-free word operations.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func (a *atomicFloat64) Load() float64 {
	return math.Float64frombits(a.bits.Load())
}

func (a *atomicFloat64) Store(v float64) {
	a.bits.Store(math.Float64bits(v))
}

// ParameterPort holds the control parameters shared between control-rate
// writers and the render path. Every parameter is independently atomic:
// a reader sees either the old or the new value of any single Set call,
// never a mix of bits. Reads never block.
type ParameterPort struct {
	frequency          atomicFloat64
	amplitude          atomicFloat64
	detuningOffset     atomicFloat64
	detuningMultiplier atomicFloat64
}

// NewParameterPort returns a port initialised with p.
func NewParameterPort(p Params) *ParameterPort {
	port := &ParameterPort{}
	port.Store(p)
	return port
}

// SetFrequency sets the base frequency in Hz.
func (pp *ParameterPort) SetFrequency(hz float64) {
	pp.frequency.Store(hz)
}

// SetAmplitude sets the linear output gain.
func (pp *ParameterPort) SetAmplitude(gain float64) {
	pp.amplitude.Store(gain)
}

// SetDetuningOffset sets the offset in Hz added after the multiplier.
func (pp *ParameterPort) SetDetuningOffset(hz float64) {
	pp.detuningOffset.Store(hz)
}

// SetDetuningMultiplier sets the factor applied to the base frequency.
func (pp *ParameterPort) SetDetuningMultiplier(m float64) {
	pp.detuningMultiplier.Store(m)
}

func (pp *ParameterPort) Frequency() float64 {
	return pp.frequency.Load()
}

func (pp *ParameterPort) Amplitude() float64 {
	return pp.amplitude.Load()
}

func (pp *ParameterPort) DetuningOffset() float64 {
	return pp.detuningOffset.Load()
}

func (pp *ParameterPort) DetuningMultiplier() float64 {
	return pp.detuningMultiplier.Load()
}

// Snapshot loads all four parameters. Values written by separate Set calls
// in quick succession may be observed independently of each other.
func (pp *ParameterPort) Snapshot() Params {
	return Params{
		Frequency:          pp.frequency.Load(),
		Amplitude:          pp.amplitude.Load(),
		DetuningOffset:     pp.detuningOffset.Load(),
		DetuningMultiplier: pp.detuningMultiplier.Load(),
	}
}

// Store writes all four parameters, one atomic store each.
func (pp *ParameterPort) Store(p Params) {
	pp.frequency.Store(p.Frequency)
	pp.amplitude.Store(p.Amplitude)
	pp.detuningOffset.Store(p.DetuningOffset)
	pp.detuningMultiplier.Store(p.DetuningMultiplier)
}

// Set writes a parameter by name. Names are case-insensitive and accept
// either snake_case or camelCase.
func (pp *ParameterPort) Set(name string, value float64) error {
	f, err := pp.field(name)
	if err != nil {
		return err
	}
	f.Store(value)
	return nil
}

// Get reads a parameter by name.
func (pp *ParameterPort) Get(name string) (float64, error) {
	f, err := pp.field(name)
	if err != nil {
		return 0, err
	}
	return f.Load(), nil
}

func (pp *ParameterPort) field(name string) (*atomicFloat64, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "")
	switch key {
	case "frequency", "freq":
		return &pp.frequency, nil
	case "amplitude", "amp", "gain":
		return &pp.amplitude, nil
	case "detuningoffset", "detune":
		return &pp.detuningOffset, nil
	case "detuningmultiplier", "multiplier":
		return &pp.detuningMultiplier, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
}
