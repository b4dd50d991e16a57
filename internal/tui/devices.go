// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"wtosc/internal/audio"
)

type devicesMsg struct {
	devices []audio.Device
}

type errMsg struct {
	err error
}

// fetchDevices gets the available audio devices
func (m Model) fetchDevices() tea.Msg {
	devices, err := m.devices()
	if err != nil {
		return errMsg{err}
	}
	return devicesMsg{devices}
}

func (m Model) updateDevices(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Devices):
		m.activeScreen = ControlScreen
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.deviceIndex > 0 {
			m.deviceIndex--
			m.viewport.SetContent(m.renderDevices())
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.deviceIndex < len(m.deviceList)-1 {
			m.deviceIndex++
			m.viewport.SetContent(m.renderDevices())
		}
		return m, nil
	case key.Matches(msg, m.keys.Reset):
		return m, m.fetchDevices
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// renderDevices formats the device list
func (m Model) renderDevices() string {
	if len(m.deviceList) == 0 {
		return "No audio devices found. Press r to refresh."
	}

	var sb strings.Builder
	for i, device := range m.deviceList {
		deviceInfo := fmt.Sprintf("[%d] %s (%s)\n", device.ID, device.Name, device.Type())
		deviceInfo += fmt.Sprintf("    Output channels: %d, Default sample rate: %.0f Hz\n",
			device.MaxOutputChannels, device.DefaultSampleRate)
		deviceInfo += fmt.Sprintf("    Output latency: %s - %s\n",
			device.LowOutputLatency, device.HighOutputLatency)

		if i == m.deviceIndex {
			deviceInfo = highlightStyle.Render(deviceInfo)
		}
		sb.WriteString(deviceInfo)
		sb.WriteString("\n")
	}
	return sb.String()
}
