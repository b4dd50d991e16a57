// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"
)

// RenderOffline renders duration worth of frames through Process and
// encodes them to w as WAV, without opening a device. It returns the number
// of frames written. Rendering is deterministic for a given oscillator state.
func (e *Engine) RenderOffline(w io.WriteSeeker, duration time.Duration) (int, error) {
	if duration < 0 {
		return 0, fmt.Errorf("audio: negative duration %s", duration)
	}

	bitDepth := e.config.Recording.BitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	rec := newRecorder(w, e.sampleRate, bitDepth, e.channels, len(e.mono))

	total := int(math.Round(duration.Seconds() * e.sampleRate))
	block := make([]float32, len(e.mono)*e.channels)

	written := 0
	for written < total {
		n := min(total-written, len(e.mono))
		frames := block[:n*e.channels]
		e.Process(frames)
		if err := rec.write(frames); err != nil {
			return written, errors.Join(err, rec.close())
		}
		written += n
	}

	if err := rec.close(); err != nil {
		return written, err
	}
	logger.Debugf("rendered %d frames offline", written)
	return written, nil
}

// RenderToFile is RenderOffline into a newly created file at path.
func (e *Engine) RenderToFile(path string, duration time.Duration) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := e.RenderOffline(f, duration)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}
