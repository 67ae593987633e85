package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Pause   key.Binding
	Focus   key.Binding
	Project key.Binding
	Help    key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Pause: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "pause/resume"),
	),
	Focus: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "focus mode"),
	),
	Project: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "clear project"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Focus, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Focus, k.Project},
		{k.Help, k.Quit},
	}
}
