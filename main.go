// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"wtosc/cmd"
	"wtosc/internal/analysis"
	"wtosc/internal/audio"
	"wtosc/internal/config"
	"wtosc/internal/log"
	"wtosc/internal/transport"
	"wtosc/internal/transport/udp"
	"wtosc/internal/tui"
	"wtosc/pkg/build"
)

// analysisResolution is the widest FFT bin, in Hz, the output spectrum
// analyzer may use.
const analysisResolution = 12.0

// main is the entry point for the oscillator host.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse command line arguments and load configuration
//   - Execute one-off commands (list, render) if requested
//   - Build the wavetable and oscillator
//
// 2. Concurrent Phase (Hot Path):
//   - Start the output backend, which calls Engine.Process
//   - Serve telemetry and remote control
//   - Run the control panel if requested
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals or TUI quit
//   - Stop recording if active
//   - Clean up resources
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	// Initialize build information including version, commit hash, and build time
	if err := build.Initialize(); err != nil {
		log.Warnf("build info: %v", err)
	}

	inv, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}
	if inv == nil {
		return // help or version was printed
	}

	level, _ := log.ParseLevel(inv.Config.LogLevel)
	log.SetLevel(level)
	log.Debugf("%s", build.GetBuildFlags())

	switch inv.Command {
	case cmd.CommandList:
		err = listDevices()
	case cmd.CommandRender:
		err = render(inv)
	default:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err = play(ctx, inv)
		stop()
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func listDevices() error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()
	return audio.ListDevices(os.Stdout)
}

func render(inv *cmd.Invocation) error {
	cfg := inv.Config
	osc, err := cmd.BuildOscillator(cfg.Oscillator, cfg.Audio.SampleRate)
	if err != nil {
		return err
	}
	engine, err := audio.NewEngine(cfg, osc)
	if err != nil {
		return err
	}
	frames, err := engine.RenderToFile(inv.Output, inv.Duration)
	if err != nil {
		return err
	}
	log.Infof("rendered %d frames (%s) to %s", frames, inv.Duration, inv.Output)
	return nil
}

// play runs the oscillator live until ctx is cancelled or the control
// panel quits.
func play(ctx context.Context, inv *cmd.Invocation) error {
	cfg := inv.Config

	osc, err := cmd.BuildOscillator(cfg.Oscillator, cfg.Audio.SampleRate)
	if err != nil {
		return err
	}

	if cfg.Audio.Backend == config.BackendPortAudio {
		if err := audio.Initialize(); err != nil {
			return err
		}
		defer audio.Terminate()
	}

	// Analysis is needed by every consumer of the output spectrum.
	wantAnalysis := cfg.Audio.Analysis || cfg.Transport.WebSocketEnabled ||
		cfg.Transport.UDPEnabled || inv.TUI

	var (
		spectrum *analysis.SpectrumAnalyzer
		level    *analysis.LevelMeter
		opts     []audio.EngineOption
	)
	if wantAnalysis {
		window, err := analysis.ParseWindowFunc(cfg.Audio.FFTWindow)
		if err != nil {
			return err
		}
		spectrum, err = analysis.NewSpectrumAnalyzer(analysis.FFTSizeFor(cfg.Audio.SampleRate, analysisResolution), cfg.Audio.SampleRate, window)
		if err != nil {
			return err
		}
		defer spectrum.Close()
		level = &analysis.LevelMeter{}
		opts = append(opts, audio.WithAnalyzer(analysis.Chain{spectrum, level}))
	}

	engine, err := audio.NewEngine(cfg, osc, opts...)
	if err != nil {
		return err
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	// CRITICAL: Start of real-time audio processing
	if err := engine.Start(); err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			log.Errorf("closing audio engine: %v", err)
		}
	}()

	if cfg.Recording.Enabled {
		if err := engine.StartRecording(audio.RecordingFilename(cfg.Recording.OutputDir, time.Now())); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	var sink transport.Transport
	if cfg.Transport.WebSocketEnabled {
		wst := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddress, osc)
		defer wst.Close()
		sink = wst
		g.Go(func() error { return wst.Serve(ctx) })
	} else if cfg.Audio.Analysis {
		sink = transport.NewLoggingTransport()
	}

	if sink != nil && spectrum != nil {
		bands, err := analysis.NewBandMeter(spectrum, analysis.DefaultBands(cfg.Audio.SampleRate))
		if err != nil {
			return err
		}
		reporter, err := analysis.NewReporter(spectrum, level, bands, sink, cfg.Transport.UDPSendInterval)
		if err != nil {
			return err
		}
		g.Go(func() error { return reporter.Run(ctx) })
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewUDPSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			return err
		}
		defer sender.Close()
		publisher, err := udp.NewUDPPublisher(cfg.Transport.UDPSendInterval, sender, spectrum)
		if err != nil {
			return err
		}
		publisher.Start()
		g.Go(func() error {
			<-ctx.Done()
			return publisher.Close()
		})
	}

	if inv.TUI {
		restore, err := logToFile()
		if err != nil {
			return err
		}
		defer restore()

		model := tui.NewModel(osc, tui.WithMeter(level), tui.WithPitchTracker(spectrum))
		program := tui.NewProgram(model, tea.WithContext(ctx))
		g.Go(func() error {
			defer cancel()
			_, err := program.Run()
			if err != nil && ctx.Err() == nil {
				return fmt.Errorf("control panel: %w", err)
			}
			return nil
		})
	} else {
		fmt.Printf("Playing %.1f Hz %s, Ctrl-C to stop.\n",
			osc.Snapshot().EffectiveFrequency(), cfg.Oscillator.Waveform)
	}

	// Block until termination signal or the panel quits.
	g.Go(func() error {
		<-ctx.Done()
		return nil
	})
	err = g.Wait()

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	if n := engine.RenderErrors(); n > 0 {
		log.Warnf("%d blocks failed to render", n)
	}
	if engine.IsRecording() {
		if stopErr := engine.StopRecording(); stopErr != nil {
			err = errors.Join(err, stopErr)
		}
	}
	return err
}

// logToFile sends log output to a file while the control panel owns the
// terminal. The returned func restores stderr.
func logToFile() (func(), error) {
	path := filepath.Join(os.TempDir(), build.GetBuildFlags().Name+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		f.Close()
	}, nil
}
