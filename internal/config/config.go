// SPDX-License-Identifier: MIT
package config

import (
	"time"

	"wtosc/internal/oscillator"
)

// Core configuration constants that define the boundaries and defaults
// for the oscillator host.
const (
	DefaultBackend         = BackendPortAudio
	DefaultChannels        = 2
	DefaultDeviceID        = MinDeviceID
	DefaultFramesPerBuffer = 512
	DefaultSampleRate      = 48000
	DefaultTableSize       = 4096
	DefaultWaveform        = "sine"
	DefaultInterpolation   = "linear"
	DefaultFFTWindow       = "Hann"

	MinDeviceID     = -1 // system default device
	MinSampleRate   = 8000
	MaxSampleRate   = 192000
	MaxBufferFrames = 8192
	MaxChannels     = 8
	MaxTableSize    = 1 << 20

	// Error handling configuration
	DefaultMaxConsecutiveWriteFailures = 5
)

// Output backends.
const (
	BackendPortAudio = "portaudio"
	BackendOto       = "oto"
	BackendBeep      = "beep" // gopxl/beep speaker, always stereo.
)

// Config is the full application configuration, loaded from YAML and
// overridden by environment variables and command-line flags.
type Config struct {
	LogLevel   string           `yaml:"log_level"`
	Audio      AudioConfig      `yaml:"audio"`
	Oscillator OscillatorConfig `yaml:"oscillator"`
	Recording  RecordingConfig  `yaml:"recording"`
	Transport  TransportConfig  `yaml:"transport"`
}

// AudioConfig holds output device and stream settings.
type AudioConfig struct {
	Backend         string  `yaml:"backend"`           // "portaudio", "oto" or "beep".
	OutputDevice    int     `yaml:"output_device"`     // PortAudio device index (-1 for default).
	SampleRate      float64 `yaml:"sample_rate"`       // Hz.
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Frames per render block.
	Channels        int     `yaml:"channels"`          // Mono output is duplicated to every channel.
	LowLatency      bool    `yaml:"low_latency"`
	GateThreshold   float64 `yaml:"gate_threshold"` // Peak level below which analysis is skipped. 0 disables.
	FFTWindow       string  `yaml:"fft_window"`
	Analysis        bool    `yaml:"analysis"` // Run spectrum analysis on rendered blocks.
}

// OscillatorConfig selects the wavetable and initial parameters.
type OscillatorConfig struct {
	oscillator.Params `yaml:",inline"`

	Waveform      string `yaml:"waveform"`      // Shape name, see waveform.ParseShape.
	TableSize     int    `yaml:"table_size"`    // Samples per cycle.
	TableFile     string `yaml:"table_file"`    // Optional WAV with one cycle. Overrides Waveform.
	Harmonics     int    `yaml:"harmonics"`     // >0 builds a band-limited table.
	Interpolation string `yaml:"interpolation"` // linear, cubic or nearest.
	Normalize     bool   `yaml:"normalize"`
}

// RecordingConfig holds settings for recording rendered output.
type RecordingConfig struct {
	Enabled   bool   `yaml:"enabled"`
	OutputDir string `yaml:"output_dir"`
	BitDepth  int    `yaml:"bit_depth"` // 16 or 24.
}

// TransportConfig holds telemetry and remote control settings.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`
	WebSocketAddress string        `yaml:"websocket_address"`
	UDPEnabled       bool          `yaml:"udp_enabled"`
	UDPTargetAddress string        `yaml:"udp_target_address"`
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Audio: AudioConfig{
			Backend:         DefaultBackend,
			OutputDevice:    DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			Channels:        DefaultChannels,
			FFTWindow:       DefaultFFTWindow,
		},
		Oscillator: OscillatorConfig{
			Params:        oscillator.DefaultParams(),
			Waveform:      DefaultWaveform,
			TableSize:     DefaultTableSize,
			Interpolation: DefaultInterpolation,
		},
		Recording: RecordingConfig{
			OutputDir: "./recordings",
			BitDepth:  16,
		},
		Transport: TransportConfig{
			WebSocketAddress: "127.0.0.1:8080",
			UDPTargetAddress: "127.0.0.1:9090",
			UDPSendInterval:  33 * time.Millisecond, // ~30Hz.
		},
	}
}
