// SPDX-License-Identifier: MIT
// Package transport carries telemetry out of the process and control
// messages into it.
package transport

import "errors"

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("transport: closed")

// Transport defines a generic interface for sending processed data or events.
// Implementations should be thread-safe.
type Transport interface {
	Send(data any) error
	Close() error
}

// ParameterSetter receives remote parameter changes. The oscillator's
// ParameterPort satisfies it.
type ParameterSetter interface {
	Set(name string, value float64) error
	Get(name string) (float64, error)
}

// Controller receives remote transport commands. It is optional: a
// ParameterSetter that also implements Controller accepts "start", "stop"
// and "reset" commands.
type Controller interface {
	Start()
	Stop()
	Reset()
}
