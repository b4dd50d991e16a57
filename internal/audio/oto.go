// SPDX-License-Identifier: MIT
package audio

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
)

// otoOutput pulls float32 little-endian frames from the engine through an
// oto player. oto owns the device thread and calls Read as it drains.
type otoOutput struct {
	engine *Engine
	ctx    *oto.Context
	player *oto.Player
	frames []float32
}

func newOtoOutput(e *Engine) (*otoOutput, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(e.sampleRate),
		ChannelCount: e.channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(float64(len(e.mono)) / e.sampleRate * float64(time.Second)),
	})
	if err != nil {
		return nil, err
	}
	<-ready

	o := &otoOutput{
		engine: e,
		ctx:    ctx,
		frames: make([]float32, len(e.mono)*e.channels),
	}
	o.player = ctx.NewPlayer(o)
	return o, nil
}

// Read implements io.Reader for the oto player.
func (o *otoOutput) Read(p []byte) (int, error) {
	frameBytes := 4 * o.engine.channels
	n := len(p) / frameBytes * o.engine.channels
	if n > len(o.frames) {
		// Rare: oto asked for more than one block.
		o.frames = make([]float32, n)
	}

	frames := o.frames[:n]
	o.engine.Process(frames)
	for i, s := range frames {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(s))
	}
	return 4 * n, nil
}

func (o *otoOutput) Start() error {
	o.player.Play()
	return o.player.Err()
}

func (o *otoOutput) Stop() error {
	o.player.Pause()
	return nil
}

func (o *otoOutput) Close() error {
	o.player.Pause()
	return o.ctx.Suspend()
}
