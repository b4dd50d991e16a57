// SPDX-License-Identifier: MIT
package audio

import (
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Streamer exposes a stereo Engine as a beep.Streamer. It never drains.
type Streamer struct {
	engine *Engine
	buf    []float32
}

// NewStreamer wraps e, which must render two channels.
func NewStreamer(e *Engine) *Streamer {
	return &Streamer{
		engine: e,
		buf:    make([]float32, 2*len(e.mono)),
	}
}

// Stream fills samples with rendered frames.
func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	for done := 0; done < len(samples); {
		n := min(len(samples)-done, len(s.buf)/2)
		frames := s.buf[:2*n]
		s.engine.Process(frames)
		for i := range n {
			samples[done+i] = [2]float64{float64(frames[2*i]), float64(frames[2*i+1])}
		}
		done += n
	}
	return len(samples), true
}

func (s *Streamer) Err() error {
	return nil
}

// Format describes the stream for beep consumers.
func (s *Streamer) Format() beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(s.engine.sampleRate),
		NumChannels: 2,
		Precision:   2,
	}
}

// beepOutput plays the engine through the beep speaker, which is
// process-global.
type beepOutput struct {
	streamer *Streamer
}

func newBeepOutput(e *Engine) (*beepOutput, error) {
	s := NewStreamer(e)
	if err := speaker.Init(s.Format().SampleRate, len(e.mono)); err != nil {
		return nil, err
	}
	return &beepOutput{streamer: s}, nil
}

func (o *beepOutput) Start() error {
	speaker.Play(o.streamer)
	return nil
}

func (o *beepOutput) Stop() error {
	speaker.Clear()
	return nil
}

func (o *beepOutput) Close() error {
	speaker.Close()
	return nil
}
