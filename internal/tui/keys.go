package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Start, Reset, Log, Export, Theme, Edit, Next, Prev, Submit, Leave, Quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Start:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Log:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log hours")),
		Export: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export csv")),
		Theme:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "dark mode")),
		Edit:   key.NewBinding(key.WithKeys("tab", "i"), key.WithHelp("tab", "edit fields")),
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Leave:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "done editing")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) normal() []key.Binding {
	return []key.Binding{k.Start, k.Reset, k.Log, k.Export, k.Theme, k.Edit, k.Quit}
}

func (k keyMap) editing() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Submit, k.Leave}
}
