// SPDX-License-Identifier: MIT
/*
Package tui is a Bubble Tea control panel for a running oscillator.

Every key press becomes a control-rate write on the oscillator's parameter
port, so the panel runs on its own goroutine alongside the audio callback
without any coordination beyond the port's atomics.
*/
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wtosc/internal/analysis"
	"wtosc/internal/audio"
	"wtosc/internal/oscillator"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87"))
)

// ScreenType defines which screen is currently active
type ScreenType int

const (
	ControlScreen ScreenType = iota
	DeviceScreen
)

// RefreshInterval is how often meters are redrawn.
const RefreshInterval = 100 * time.Millisecond

// Meter reports the level of the rendered output.
type Meter interface {
	RMS() float64
	Peak() float64
}

// PitchTracker reports the strongest frequency in the rendered output.
type PitchTracker interface {
	DominantFrequency() float64
}

// step is the fine and coarse increment for one parameter.
type step struct {
	fine, coarse float64
	min, max     float64
}

var steps = map[string]step{
	oscillator.ParamFrequency:          {fine: 1, coarse: 100, min: 0, max: 20000},
	oscillator.ParamAmplitude:          {fine: 0.01, coarse: 0.1, min: 0, max: 1},
	oscillator.ParamDetuningOffset:     {fine: 0.1, coarse: 10, min: -1000, max: 1000},
	oscillator.ParamDetuningMultiplier: {fine: 0.001, coarse: 0.1, min: 0, max: 16},
}

// Model is the Bubble Tea model of the control panel.
type Model struct {
	osc     *oscillator.Oscillator
	meter   Meter
	pitch   PitchTracker
	devices func() ([]audio.Device, error)

	keys     keyMap
	help     help.Model
	viewport viewport.Model

	selected     int
	activeScreen ScreenType
	deviceList   []audio.Device
	deviceIndex  int
	err          error
}

// Option configures a Model.
type Option func(*Model)

// WithMeter shows RMS and peak levels.
func WithMeter(m Meter) Option {
	return func(model *Model) { model.meter = m }
}

// WithPitchTracker shows the measured output frequency.
func WithPitchTracker(p PitchTracker) Option {
	return func(model *Model) { model.pitch = p }
}

// WithDevices replaces the device lister used by the device screen.
func WithDevices(f func() ([]audio.Device, error)) Option {
	return func(model *Model) { model.devices = f }
}

// NewModel returns a control panel for osc.
func NewModel(osc *oscillator.Oscillator, opts ...Option) Model {
	m := Model{
		osc:      osc,
		devices:  audio.HostDevices,
		keys:     defaultKeyMap(),
		help:     help.New(),
		viewport: viewport.New(80, 12),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts the meter refresh.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Selected returns the name of the highlighted parameter.
func (m Model) Selected() string {
	return oscillator.ParamNames[m.selected]
}

// Screen returns the active screen.
func (m Model) Screen() ScreenType {
	return m.activeScreen
}

// Update handles input and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-6, 3)
		return m, nil

	case tickMsg:
		return m, tick()

	case devicesMsg:
		m.deviceList = msg.devices
		m.err = nil
		m.viewport.SetContent(m.renderDevices())
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		if m.activeScreen == DeviceScreen {
			return m.updateDevices(msg)
		}
		return m.updateControls(msg)
	}
	return m, nil
}

func (m Model) updateControls(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.selected = (m.selected + len(oscillator.ParamNames) - 1) % len(oscillator.ParamNames)
	case key.Matches(msg, m.keys.Down):
		m.selected = (m.selected + 1) % len(oscillator.ParamNames)
	case key.Matches(msg, m.keys.Decrease):
		m.adjust(-steps[m.Selected()].fine)
	case key.Matches(msg, m.keys.Increase):
		m.adjust(steps[m.Selected()].fine)
	case key.Matches(msg, m.keys.DecreaseBig):
		m.adjust(-steps[m.Selected()].coarse)
	case key.Matches(msg, m.keys.IncreaseBig):
		m.adjust(steps[m.Selected()].coarse)
	case key.Matches(msg, m.keys.Toggle):
		if m.osc.IsPlaying() {
			m.osc.Stop()
		} else {
			m.osc.Start()
		}
	case key.Matches(msg, m.keys.Reset):
		m.osc.Reset()
	case key.Matches(msg, m.keys.Interpolate):
		m.osc.SetInterpolation((m.osc.Interpolation() + 1) % (oscillator.InterpolationNearest + 1))
	case key.Matches(msg, m.keys.Devices):
		m.activeScreen = DeviceScreen
		m.err = nil
		return m, m.fetchDevices
	}
	return m, nil
}

// adjust nudges the selected parameter by delta, keeping it within the
// panel's range.
func (m *Model) adjust(delta float64) {
	name := m.Selected()
	v, err := m.osc.Get(name)
	if err != nil {
		m.err = err
		return
	}
	s := steps[name]
	m.err = m.osc.Set(name, min(max(v+delta, s.min), s.max))
}

// View renders the UI
func (m Model) View() string {
	var title, body string
	if m.activeScreen == DeviceScreen {
		title = titleStyle.Render("Audio Devices")
		body = m.viewport.View()
	} else {
		title = titleStyle.Render("Wavetable Oscillator")
		body = m.renderControls()
	}

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n\n")
	sb.WriteString(body)
	sb.WriteString("\n")
	if m.err != nil {
		sb.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m Model) renderControls() string {
	var sb strings.Builder
	p := m.osc.Snapshot()
	values := map[string]float64{
		oscillator.ParamFrequency:          p.Frequency,
		oscillator.ParamAmplitude:          p.Amplitude,
		oscillator.ParamDetuningOffset:     p.DetuningOffset,
		oscillator.ParamDetuningMultiplier: p.DetuningMultiplier,
	}

	for i, name := range oscillator.ParamNames {
		line := fmt.Sprintf("  %-20s %10.3f", name, values[name])
		if i == m.selected {
			line = highlightStyle.Render("▶" + line[1:])
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	state := "stopped"
	if m.osc.IsPlaying() {
		state = "playing"
	}
	sb.WriteString("\n")
	sb.WriteString(infoStyle.Render(fmt.Sprintf("  %s • %s • table %d • %.1f Hz effective",
		state, m.osc.Interpolation(), m.osc.TableSize(), p.EffectiveFrequency())))
	sb.WriteString("\n")

	if m.meter != nil {
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("  rms %6.1f dBFS  peak %6.1f dBFS",
			analysis.Decibels(m.meter.RMS()), analysis.Decibels(m.meter.Peak()))))
		sb.WriteString("\n")
	}
	if m.pitch != nil {
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("  measured %.1f Hz", m.pitch.DominantFrequency())))
		sb.WriteString("\n")
	}
	return sb.String()
}

// NewProgram wraps m in a Bubble Tea program.
func NewProgram(m Model, opts ...tea.ProgramOption) *tea.Program {
	return tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
}
