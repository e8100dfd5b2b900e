package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all dashboard key bindings with built-in help text.
type KeyMap struct {
	// Global
	Quit      key.Binding
	ForceQuit key.Binding
	Help      key.Binding
	Escape    key.Binding

	// Navigation
	Up           key.Binding
	Down         key.Binding
	NextCard     key.Binding
	PrevCard     key.Binding
	Home         key.Binding
	End          key.Binding
	FocusE2E     key.Binding
	FocusPayload key.Binding
	Toggle       key.Binding

	// Search
	Search  key.Binding
	Submit  key.Binding
	Refresh key.Binding

	// Actions
	Retest    key.Binding
	RetestAll key.Binding
	Analyze   key.Binding
	Open      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("escape", "esc"),
			key.WithHelp("esc", "cancel/close"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		NextCard: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next PR"),
		),
		PrevCard: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev PR"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home/g", "first PR"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end/G", "last PR"),
		),
		FocusE2E: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "E2E jobs"),
		),
		FocusPayload: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "payload jobs"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "expand/collapse"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run search"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),

		Retest: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "retest job"),
		),
		RetestAll: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "retest all"),
		),
		Analyze: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "analyze"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open PR"),
		),
	}
}
