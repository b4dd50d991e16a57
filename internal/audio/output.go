// SPDX-License-Identifier: MIT
package audio

import (
	"runtime"

	"github.com/gordonklaus/portaudio"
)

// portAudioOutput is a callback-driven PortAudio output stream.
type portAudioOutput struct {
	stream *portaudio.Stream
}

func newPortAudioOutput(e *Engine) (*portAudioOutput, error) {
	device, err := OutputDevice(e.config.Audio.OutputDevice)
	if err != nil {
		return nil, err
	}

	latency := device.DefaultHighOutputLatency
	if e.config.Audio.LowLatency {
		latency = device.DefaultLowOutputLatency
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 0, // No input device
			Device:   nil,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: e.channels,
			Device:   device,
			Latency:  latency,
		},
		FramesPerBuffer: len(e.mono),
		SampleRate:      e.sampleRate,
	}

	stream, err := portaudio.OpenStream(params, func(out []float32) {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		e.Process(out)
	})
	if err != nil {
		return nil, err
	}
	return &portAudioOutput{stream: stream}, nil
}

func (o *portAudioOutput) Start() error {
	return o.stream.Start()
}

func (o *portAudioOutput) Stop() error {
	return o.stream.Stop()
}

func (o *portAudioOutput) Close() error {
	return o.stream.Close()
}
