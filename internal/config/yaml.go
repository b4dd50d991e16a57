// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"wtosc/internal/log"
	"wtosc/internal/oscillator"
)

// EnvPrefix prefixes every environment override, e.g. WTOSC_SAMPLE_RATE.
const EnvPrefix = "WTOSC_"

var logger = log.With("config")

// Candidates returns the locations searched when no explicit path is given,
// in order of preference.
func Candidates() []string {
	candidates := []string{"config.yaml"}
	if home, err := homedir.Dir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "wtosc", "config.yaml"))
	}
	return candidates
}

// LoadConfig loads configuration from the YAML file at path. If path is
// empty the Candidates are searched and built-in defaults are used when
// none exists. Environment overrides are applied after the file and the
// result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		for _, candidate := range Candidates() {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	} else if expanded, err := homedir.Expand(path); err == nil {
		path = expanded
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		logger.Debugf("loaded %s", path)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate reports every setting outside its supported range.
func (c *Config) Validate() error {
	var errs []error

	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("log_level %q is not recognized", c.LogLevel))
	}

	a := c.Audio
	switch a.Backend {
	case BackendPortAudio, BackendOto, BackendBeep:
	default:
		errs = append(errs, fmt.Errorf("audio.backend %q must be one of %q, %q, %q", a.Backend, BackendPortAudio, BackendOto, BackendBeep))
	}
	if a.OutputDevice < MinDeviceID {
		errs = append(errs, fmt.Errorf("audio.output_device %d is invalid", a.OutputDevice))
	}
	if a.SampleRate < MinSampleRate || a.SampleRate > MaxSampleRate {
		errs = append(errs, fmt.Errorf("audio.sample_rate %.0f outside [%d, %d]", a.SampleRate, MinSampleRate, MaxSampleRate))
	}
	if a.FramesPerBuffer <= 0 || a.FramesPerBuffer > MaxBufferFrames {
		errs = append(errs, fmt.Errorf("audio.frames_per_buffer %d outside [1, %d]", a.FramesPerBuffer, MaxBufferFrames))
	}
	if a.Channels < 1 || a.Channels > MaxChannels {
		errs = append(errs, fmt.Errorf("audio.channels %d outside [1, %d]", a.Channels, MaxChannels))
	}
	if a.GateThreshold < 0 {
		errs = append(errs, errors.New("audio.gate_threshold must not be negative"))
	}

	o := c.Oscillator
	if o.TableSize < 1 || o.TableSize > MaxTableSize {
		errs = append(errs, fmt.Errorf("oscillator.table_size %d outside [1, %d]", o.TableSize, MaxTableSize))
	}
	if o.Harmonics < 0 {
		errs = append(errs, errors.New("oscillator.harmonics must not be negative"))
	}
	if _, err := oscillator.ParseInterpolation(o.Interpolation); err != nil {
		errs = append(errs, err)
	}

	if c.Recording.Enabled {
		if c.Recording.OutputDir == "" {
			errs = append(errs, errors.New("recording.output_dir must be set when recording is enabled"))
		}
		if d := c.Recording.BitDepth; d != 16 && d != 24 {
			errs = append(errs, fmt.Errorf("recording.bit_depth %d must be 16 or 24", d))
		}
	}

	t := c.Transport
	if t.WebSocketEnabled && !strings.Contains(t.WebSocketAddress, ":") {
		errs = append(errs, fmt.Errorf("transport.websocket_address %q is missing a port", t.WebSocketAddress))
	}
	if t.UDPEnabled {
		if !strings.Contains(t.UDPTargetAddress, ":") {
			errs = append(errs, fmt.Errorf("transport.udp_target_address %q is missing a port", t.UDPTargetAddress))
		}
		if t.UDPSendInterval <= 0 {
			errs = append(errs, errors.New("transport.udp_send_interval must be positive when UDP is enabled"))
		}
	}

	return errors.Join(errs...)
}

// applyEnvOverrides reads WTOSC_* variables. Unparseable values are errors
// rather than being silently ignored.
func (c *Config) applyEnvOverrides() error {
	var errs []error
	str := func(name string, dst *string) {
		if val, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = val
			logger.Infof("overriding %s from env: %s", strings.ToLower(name), val)
		}
	}
	float := func(name string, dst *float64) {
		if val, ok := os.LookupEnv(EnvPrefix + name); ok {
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = f
			logger.Infof("overriding %s from env: %v", strings.ToLower(name), f)
		}
	}
	integer := func(name string, dst *int) {
		if val, ok := os.LookupEnv(EnvPrefix + name); ok {
			n, err := strconv.Atoi(val)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
			logger.Infof("overriding %s from env: %d", strings.ToLower(name), n)
		}
	}
	boolean := func(name string, dst *bool) {
		if val, ok := os.LookupEnv(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(val)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
			logger.Infof("overriding %s from env: %v", strings.ToLower(name), b)
		}
	}
	duration := func(name string, dst *time.Duration) {
		if val, ok := os.LookupEnv(EnvPrefix + name); ok {
			d, err := time.ParseDuration(val)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
			logger.Infof("overriding %s from env: %s", strings.ToLower(name), d)
		}
	}

	str("LOG_LEVEL", &c.LogLevel)

	str("BACKEND", &c.Audio.Backend)
	integer("OUTPUT_DEVICE", &c.Audio.OutputDevice)
	float("SAMPLE_RATE", &c.Audio.SampleRate)
	integer("FRAMES_PER_BUFFER", &c.Audio.FramesPerBuffer)
	integer("CHANNELS", &c.Audio.Channels)

	float("FREQUENCY", &c.Oscillator.Frequency)
	float("AMPLITUDE", &c.Oscillator.Amplitude)
	float("DETUNING_OFFSET", &c.Oscillator.DetuningOffset)
	float("DETUNING_MULTIPLIER", &c.Oscillator.DetuningMultiplier)
	str("WAVEFORM", &c.Oscillator.Waveform)
	integer("TABLE_SIZE", &c.Oscillator.TableSize)
	str("TABLE_FILE", &c.Oscillator.TableFile)
	str("INTERPOLATION", &c.Oscillator.Interpolation)

	boolean("RECORDING_ENABLED", &c.Recording.Enabled)

	boolean("WEBSOCKET_ENABLED", &c.Transport.WebSocketEnabled)
	str("WEBSOCKET_ADDRESS", &c.Transport.WebSocketAddress)
	boolean("UDP_ENABLED", &c.Transport.UDPEnabled)
	str("UDP_TARGET_ADDRESS", &c.Transport.UDPTargetAddress)
	duration("UDP_SEND_INTERVAL", &c.Transport.UDPSendInterval)

	return errors.Join(errs...)
}
