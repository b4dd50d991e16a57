// SPDX-License-Identifier: MIT
package waveform

import (
	"errors"
	"fmt"
	"os"

	"github.com/dh1tw/gosamplerate"
	"github.com/go-audio/wav"
)

// ErrInvalidWAV is returned when a file cannot be decoded as PCM WAV.
var ErrInvalidWAV = errors.New("waveform: not a valid WAV file")

// LoadWAV reads a single cycle from the first channel of a WAV file and
// resamples it to size samples. Samples are scaled by the file's bit depth
// into [-1, 1]. A size of 0 keeps the file's own length.
func LoadWAV(path string, size int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open waveform file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode waveform file: %w", err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 || len(buf.Data) == 0 {
		return nil, fmt.Errorf("%w: %s has no samples", ErrInvalidWAV, path)
	}

	channels := buf.Format.NumChannels
	depth := buf.SourceBitDepth
	if depth <= 0 {
		depth = int(dec.BitDepth)
	}
	scale := float32(1)
	if depth > 1 {
		scale = 1 / float32(int64(1)<<(depth-1))
	}

	cycle := make([]float32, len(buf.Data)/channels)
	for i := range cycle {
		cycle[i] = float32(buf.Data[i*channels]) * scale
	}

	if size <= 0 || size == len(cycle) {
		return cycle, nil
	}
	return Resample(cycle, size)
}

// Resample stretches one cycle to size samples with a sinc converter.
// The converter output is padded or truncated to exactly size samples.
func Resample(cycle []float32, size int) ([]float32, error) {
	if len(cycle) == 0 || size <= 0 {
		return nil, fmt.Errorf("waveform: cannot resample %d samples to %d", len(cycle), size)
	}
	ratio := float64(size) / float64(len(cycle))
	out, err := gosamplerate.Simple(cycle, ratio, 1, gosamplerate.SRC_SINC_MEDIUM_QUALITY)
	if err != nil {
		return nil, fmt.Errorf("failed to resample waveform: %w", err)
	}
	if len(out) >= size {
		return out[:size], nil
	}
	padded := make([]float32, size)
	copy(padded, out)
	return padded, nil
}
