package tui

import "github.com/charmbracelet/bubbles/key"

type reviewKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Refresh key.Binding
	Reject  key.Binding
	Attach  key.Binding
	Filter  key.Binding
	History key.Binding
	Quit    key.Binding
}

func newReviewKeyMap() reviewKeyMap {
	return reviewKeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Reject:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reject")),
		Attach:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "attach proof")),
		Filter:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		History: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
		Quit:    key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

func (k reviewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Reject, k.Attach, k.Filter, k.History, k.Quit}
}

func (k reviewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Refresh, k.Reject, k.Attach},
		{k.Filter, k.History, k.Quit},
	}
}

type dialogKeyMap struct {
	Submit  key.Binding
	Cancel  key.Binding
	Newline key.Binding
}

func newDialogKeyMap() dialogKeyMap {
	return dialogKeyMap{
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Newline: key.NewBinding(key.WithKeys("ctrl+j"), key.WithHelp("ctrl+j", "new line")),
	}
}

func (k dialogKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Newline, k.Cancel}
}

func (k dialogKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// backKeys closes secondary screens.
var backKeys = key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "back"))
