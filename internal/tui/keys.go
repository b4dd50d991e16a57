// SPDX-License-Identifier: MIT
package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Decrease    key.Binding
	Increase    key.Binding
	DecreaseBig key.Binding
	IncreaseBig key.Binding
	Toggle      key.Binding
	Reset       key.Binding
	Interpolate key.Binding
	Devices     key.Binding
	Back        key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev param")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next param")),
		Decrease:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "fine -")),
		Increase:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "fine +")),
		DecreaseBig: key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "coarse -")),
		IncreaseBig: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "coarse +")),
		Toggle:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "start/stop")),
		Reset:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset phase")),
		Interpolate: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "interpolation")),
		Devices:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "devices")),
		Back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Decrease, k.Increase, k.Toggle, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Decrease, k.Increase, k.DecreaseBig, k.IncreaseBig},
		{k.Toggle, k.Reset, k.Interpolate},
		{k.Devices, k.Back, k.Help, k.Quit},
	}
}
