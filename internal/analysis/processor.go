// SPDX-License-Identifier: MIT
package analysis

// AudioProcessor consumes rendered mono blocks. Implementations run on the
// render goroutine and must not block or allocate.
type AudioProcessor interface {
	Process(block []float32)
}

// ClosableProcessor combines AudioProcessor with a Close method for resource cleanup.
type ClosableProcessor interface {
	AudioProcessor
	Close() error
}

// FFTResultProvider exposes the latest magnitude spectrum to control-rate
// readers such as band meters and telemetry publishers.
type FFTResultProvider interface {
	MagnitudesInto(dst []float64) error
	FrequencyForBin(bin int) float64
	FFTSize() int
	SampleRate() float64
}

// Chain runs each processor in order on the same block.
type Chain []AudioProcessor

func (c Chain) Process(block []float32) {
	for _, p := range c {
		p.Process(block)
	}
}
