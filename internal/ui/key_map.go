package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	toggle  key.Binding
	all     key.Binding
	start   key.Binding
	cancel  key.Binding
	restart key.Binding
	save    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		all:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all/none")),
		start:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "extract")),
		cancel:  key.NewBinding(key.WithKeys("c", "esc"), key.WithHelp("c/esc", "cancel")),
		restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "new run")),
		save:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save log")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.toggle, k.all, k.start},
		{k.cancel, k.restart, k.save},
		{k.quit},
	}
}
