package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Send       key.Binding
	Newline    key.Binding
	Attach     key.Binding
	Detach     key.Binding
	ToggleMode key.Binding
	Download   key.Binding
	NewSession key.Binding
	Focus      key.Binding
	Help       key.Binding
	Close      key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Send:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Send")),
		Newline:    key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"), key.WithHelp("Alt+Enter", "New line")),
		Attach:     key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("Ctrl+O", "Attach file")),
		Detach:     key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("Ctrl+X", "Remove file")),
		ToggleMode: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("Ctrl+T", "Switch mode")),
		Download:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("Ctrl+S", "Download")),
		NewSession: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("Ctrl+N", "New session")),
		Focus:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "Switch pane")),
		Help:       key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("Ctrl+G", "Toggle cheatsheet")),
		Close:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Close picker")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("Ctrl+C", "Quit")),
	}
}

func (k keyMap) legend() []key.Binding {
	return []key.Binding{
		k.Send, k.Newline, k.Attach, k.Detach, k.ToggleMode,
		k.Download, k.NewSession, k.Focus, k.Help, k.Quit,
	}
}
