// SPDX-License-Identifier: MIT
// Package utils holds signal helpers shared by tests across packages.
package utils

import (
	"math"
	"sync"
)

// MockTransport records every message sent to it instead of transmitting.
type MockTransport struct {
	mu       sync.Mutex
	messages []any
	closed   bool
}

// Send stores the message. Float slices are copied so later writes by the
// caller do not alter what was recorded.
func (m *MockTransport) Send(data any) error {
	switch v := data.(type) {
	case []float64:
		data = append([]float64(nil), v...)
	case []float32:
		data = append([]float32(nil), v...)
	}
	m.mu.Lock()
	m.messages = append(m.messages, data)
	m.mu.Unlock()
	return nil
}

func (m *MockTransport) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Messages returns a copy of everything sent so far.
func (m *MockTransport) Messages() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]any(nil), m.messages...)
}

// Last returns the most recent message, or nil.
func (m *MockTransport) Last() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return nil
	}
	return m.messages[len(m.messages)-1]
}

func (m *MockTransport) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func GenerateSineWave(size int, sampleRate, frequency float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = float32(math.Sin(2*math.Pi*frequency*t) * 0.9)
	}
	return buffer
}

func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}

	if startBin < 0 {
		startBin = 0
	}

	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]

	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}

	return peakBin
}

// MaxAbsDiff returns the largest |a[i]-b[i]| over the shorter length.
func MaxAbsDiff(a, b []float32) float64 {
	var worst float64
	for i := range min(len(a), len(b)) {
		worst = max(worst, math.Abs(float64(a[i])-float64(b[i])))
	}
	return worst
}
