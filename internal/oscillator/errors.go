// SPDX-License-Identifier: MIT
package oscillator

import "errors"

// Configuration errors are returned synchronously and never leave the
// oscillator in a partially updated state. Render errors are status values;
// the output block is zero-filled whenever one is returned.
var (
	ErrInvalidTableSize = errors.New("oscillator: invalid table size")
	ErrIndexOutOfRange  = errors.New("oscillator: table index out of range")
	ErrNotInitialized   = errors.New("oscillator: no waveform table set up")
	ErrRenderBusy       = errors.New("oscillator: render already in progress")
	ErrUnknownParameter = errors.New("oscillator: unknown parameter")
)
