// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"wtosc/internal/config"
)

var ErrAlreadyRecording = errors.New("audio: already recording")

// recorder converts float frames to integer PCM and feeds a WAV encoder.
type recorder struct {
	file     io.Closer
	enc      *wav.Encoder
	buf      *audio.IntBuffer
	scale    float64
	failures int
}

func newRecorder(w io.WriteSeeker, sampleRate float64, bitDepth, channels, frames int) *recorder {
	return &recorder{
		enc: wav.NewEncoder(w, int(sampleRate), bitDepth, channels, 1),
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: channels,
				SampleRate:  int(sampleRate),
			},
			SourceBitDepth: bitDepth,
			Data:           make([]int, frames*channels),
		},
		scale: float64(int(1)<<(bitDepth-1) - 1),
	}
}

// write encodes interleaved frames in chunks of the pre-allocated buffer.
func (r *recorder) write(frames []float32) error {
	data := r.buf.Data[:cap(r.buf.Data)]
	for len(frames) > 0 {
		n := min(len(frames), len(data))
		for i, s := range frames[:n] {
			data[i] = int(float64(clamp(s)) * r.scale)
		}
		r.buf.Data = data[:n]
		if err := r.enc.Write(r.buf); err != nil {
			return err
		}
		frames = frames[n:]
	}
	return nil
}

func (r *recorder) close() error {
	err := r.enc.Close()
	if r.file != nil {
		err = errors.Join(err, r.file.Close())
	}
	return err
}

func clamp(s float32) float32 {
	return max(-1, min(1, s))
}

// RecordingFilename returns a timestamped WAV path inside dir.
func RecordingFilename(dir string, t time.Time) string {
	return filepath.Join(dir, "wtosc-"+t.Format("20060102-150405")+".wav")
}

// StartRecording writes everything the engine renders to a WAV file.
func (e *Engine) StartRecording(filename string) error {
	e.recMu.Lock()
	defer e.recMu.Unlock()

	if e.isRecording.Load() {
		return ErrAlreadyRecording
	}

	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	bitDepth := e.config.Recording.BitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	e.rec = newRecorder(file, e.sampleRate, bitDepth, e.channels, len(e.mono))
	e.rec.file = file
	e.isRecording.Store(true)

	logger.Infof("recording to %s (%d-bit)", filename, bitDepth)
	return nil
}

// StopRecording finalizes the WAV header and closes the file.
func (e *Engine) StopRecording() error {
	e.recMu.Lock()
	defer e.recMu.Unlock()

	if !e.isRecording.Load() {
		return nil
	}
	e.isRecording.Store(false)

	rec := e.rec
	e.rec = nil
	if err := rec.close(); err != nil {
		return fmt.Errorf("finalize recording: %w", err)
	}
	return nil
}

// IsRecording reports whether rendered output is being written to disk.
func (e *Engine) IsRecording() bool {
	return e.isRecording.Load()
}

// record runs on the render goroutine. A block is dropped rather than
// waiting while StartRecording or StopRecording hold the lock.
func (e *Engine) record(frames []float32) {
	if !e.recMu.TryLock() {
		return
	}
	defer e.recMu.Unlock()

	rec := e.rec
	if rec == nil {
		return
	}
	if err := rec.write(frames); err != nil {
		rec.failures++
		logger.Errorf("writing to WAV file: %v", err)
		if rec.failures >= config.DefaultMaxConsecutiveWriteFailures {
			logger.Errorf("too many write failures, recording stopped")
			e.isRecording.Store(false)
			e.rec = nil
			rec.close()
		}
		return
	}
	rec.failures = 0
}
