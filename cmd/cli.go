// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"wtosc/internal/config"
	"wtosc/internal/log"
	"wtosc/pkg/build"
)

// Commands selected on the command line.
const (
	CommandPlay   = "play"
	CommandList   = "list"
	CommandRender = "render"
)

// DefaultRenderDuration is the length of an offline render when --duration
// is not given.
const DefaultRenderDuration = 2 * time.Second

// Invocation is the parsed command line: which command to run and the
// configuration it runs with.
type Invocation struct {
	Command string
	Config  *config.Config

	TUI bool // play: show the control panel

	Output   string        // render: destination WAV file
	Duration time.Duration // render: length of audio
}

// flagValues collects flag values before they are merged into the loaded
// configuration. Only flags the user actually set are merged.
type flagValues struct {
	configPath string
	verbose    bool
	logLevel   string

	backend         string
	device          int
	sampleRate      float64
	framesPerBuffer int
	channels        int
	lowLatency      bool
	gate            float64
	analysis        bool

	frequency     float64
	amplitude     float64
	detune        float64
	multiplier    float64
	waveform      string
	tableSize     int
	tableFile     string
	harmonics     int
	interpolation string
	normalize     bool

	record    bool
	recordDir string
	bitDepth  int

	websocket     bool
	websocketAddr string
	udp           bool
	udpAddr       string
}

// ParseArgs parses args (without the program name), loads the configuration
// file and environment, and applies any flags that were set.
func ParseArgs(args []string) (*Invocation, error) {
	buildInfo := build.GetBuildFlags()
	inv := &Invocation{Command: CommandPlay}
	var fv flagValues

	finish := func(command string) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			inv.Command = command
			cfg, err := config.LoadConfig(fv.configPath)
			if err != nil {
				return err
			}
			if err := fv.apply(cmd.Flags(), cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			inv.Config = cfg
			return nil
		}
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: finish(CommandPlay),
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio output devices",
		Args:  cobra.NoArgs,
		RunE:  finish(CommandList),
	}
	rootCmd.AddCommand(listCmd)

	// Render command
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render the oscillator to a WAV file without an audio device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inv.Output == "" {
				return fmt.Errorf("render requires --out")
			}
			if inv.Duration <= 0 {
				return fmt.Errorf("render duration must be positive, got %s", inv.Duration)
			}
			return finish(CommandRender)(cmd, args)
		},
	}
	renderCmd.Flags().StringVarP(&inv.Output, "out", "o", "", "Destination WAV file")
	renderCmd.Flags().DurationVar(&inv.Duration, "duration", DefaultRenderDuration, "Length of the render")
	rootCmd.AddCommand(renderCmd)

	rootCmd.Flags().BoolVarP(&inv.TUI, "tui", "t", false, "Show the interactive control panel")

	pf := rootCmd.PersistentFlags()

	// General
	pf.StringVarP(&fv.configPath, "config", "C", "", "Configuration file (default ./config.yaml or ~/.config/wtosc/config.yaml)")
	pf.BoolVarP(&fv.verbose, "verbose", "v", false, "Show verbose output (same as --log-level debug)")
	pf.StringVar(&fv.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	// Audio Device Configuration
	pf.StringVar(&fv.backend, "backend", config.DefaultBackend, "Output backend: portaudio, oto or beep")
	pf.IntVarP(&fv.device, "device", "d", config.DefaultDeviceID,
		"Output device ID. Use 'list' command to see available devices.")
	pf.Float64VarP(&fv.sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	pf.IntVarP(&fv.framesPerBuffer, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	pf.IntVarP(&fv.channels, "channels", "c", config.DefaultChannels,
		"Number of output channels (the mono signal is copied to each)")
	pf.BoolVarP(&fv.lowLatency, "low-latency", "l", false,
		"Use the device's low latency setting")
	pf.Float64Var(&fv.gate, "gate", 0, "Peak level below which analysis is skipped (0 disables)")
	pf.BoolVar(&fv.analysis, "analysis", false, "Run spectrum analysis on the output")

	// Oscillator
	pf.Float64VarP(&fv.frequency, "frequency", "f", 0, "Base frequency in Hz")
	pf.Float64VarP(&fv.amplitude, "amplitude", "a", 0, "Output gain")
	pf.Float64Var(&fv.detune, "detune", 0, "Detuning offset in Hz")
	pf.Float64Var(&fv.multiplier, "multiplier", 0, "Detuning multiplier")
	pf.StringVarP(&fv.waveform, "waveform", "w", config.DefaultWaveform, "Table shape, e.g. sine, sawtooth, square")
	pf.IntVar(&fv.tableSize, "table-size", config.DefaultTableSize, "Samples per table cycle")
	pf.StringVar(&fv.tableFile, "table-file", "", "WAV file holding one cycle to use as the table")
	pf.IntVar(&fv.harmonics, "harmonics", 0, "Build a band-limited table with this many harmonics")
	pf.StringVarP(&fv.interpolation, "interpolation", "i", config.DefaultInterpolation, "Table lookup: linear, cubic or nearest")
	pf.BoolVar(&fv.normalize, "normalize", false, "Scale the table to a peak of 1")

	// Recording Configuration
	pf.BoolVarP(&fv.record, "record", "r", false, "Record the output to a WAV file")
	pf.StringVar(&fv.recordDir, "record-dir", "", "Directory for recordings")
	pf.IntVar(&fv.bitDepth, "bit-depth", 0, "Recording bit depth (16 or 24)")

	// Telemetry and remote control
	pf.BoolVar(&fv.websocket, "websocket", false, "Serve telemetry and remote control over WebSocket")
	pf.StringVar(&fv.websocketAddr, "websocket-addr", "", "WebSocket listen address")
	pf.BoolVar(&fv.udp, "udp", false, "Publish spectrum packets over UDP")
	pf.StringVar(&fv.udpAddr, "udp-addr", "", "UDP target address")

	// Execute the CLI
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	// --help and --version return without running a command.
	if inv.Config == nil {
		return nil, nil
	}
	return inv, nil
}

// apply merges every flag that was set on the command line into cfg.
func (fv *flagValues) apply(flags *pflag.FlagSet, cfg *config.Config) error {
	set := func(name string, fn func()) {
		if flags.Changed(name) {
			fn()
		}
	}

	set("log-level", func() { cfg.LogLevel = fv.logLevel })
	set("verbose", func() {
		if fv.verbose {
			cfg.LogLevel = log.LevelDebug.String()
		}
	})

	set("backend", func() { cfg.Audio.Backend = fv.backend })
	set("device", func() { cfg.Audio.OutputDevice = fv.device })
	set("sample-rate", func() { cfg.Audio.SampleRate = fv.sampleRate })
	set("frames-per-buffer", func() { cfg.Audio.FramesPerBuffer = fv.framesPerBuffer })
	set("channels", func() { cfg.Audio.Channels = fv.channels })
	set("low-latency", func() { cfg.Audio.LowLatency = fv.lowLatency })
	set("gate", func() { cfg.Audio.GateThreshold = fv.gate })
	set("analysis", func() { cfg.Audio.Analysis = fv.analysis })

	set("frequency", func() { cfg.Oscillator.Frequency = fv.frequency })
	set("amplitude", func() { cfg.Oscillator.Amplitude = fv.amplitude })
	set("detune", func() { cfg.Oscillator.DetuningOffset = fv.detune })
	set("multiplier", func() { cfg.Oscillator.DetuningMultiplier = fv.multiplier })
	set("waveform", func() { cfg.Oscillator.Waveform = fv.waveform })
	set("table-size", func() { cfg.Oscillator.TableSize = fv.tableSize })
	set("table-file", func() { cfg.Oscillator.TableFile = fv.tableFile })
	set("harmonics", func() { cfg.Oscillator.Harmonics = fv.harmonics })
	set("interpolation", func() { cfg.Oscillator.Interpolation = fv.interpolation })
	set("normalize", func() { cfg.Oscillator.Normalize = fv.normalize })

	set("record", func() { cfg.Recording.Enabled = fv.record })
	set("record-dir", func() { cfg.Recording.OutputDir = fv.recordDir })
	set("bit-depth", func() { cfg.Recording.BitDepth = fv.bitDepth })

	set("websocket", func() { cfg.Transport.WebSocketEnabled = fv.websocket })
	set("websocket-addr", func() { cfg.Transport.WebSocketAddress = fv.websocketAddr })
	set("udp", func() { cfg.Transport.UDPEnabled = fv.udp })
	set("udp-addr", func() { cfg.Transport.UDPTargetAddress = fv.udpAddr })

	if fv.verbose && flags.Changed("log-level") {
		return fmt.Errorf("--verbose and --log-level are mutually exclusive")
	}
	return nil
}
