package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpPage lists the key bindings.
type HelpPage struct {
	keys               KeyMap
	viewport           viewport.Model
	reverseScrollWheel bool
}

// NewHelpPage creates the help page.
func NewHelpPage(reverseScrollWheel bool) *HelpPage {
	return &HelpPage{
		keys:               DefaultKeyMap(),
		viewport:           viewport.New(80, 20),
		reverseScrollWheel: reverseScrollWheel,
	}
}

func (h *HelpPage) ID() string { return PageHelp }

func (h *HelpPage) Init() tea.Cmd {
	h.viewport.GotoTop()
	return nil
}

func (h *HelpPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, h.keys.ForceQuit):
			return tea.Quit, nil
		case key.Matches(msg, h.keys.Help, h.keys.Escape, h.keys.Quit):
			return nil, navTo(PageDashboard)
		case key.Matches(msg, h.keys.Up):
			h.viewport.ScrollUp(1)
			return nil, nil
		case key.Matches(msg, h.keys.Down):
			h.viewport.ScrollDown(1)
			return nil, nil
		}
		var cmd tea.Cmd
		h.viewport, cmd = h.viewport.Update(msg)
		return cmd, nil

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return nil, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if h.reverseScrollWheel {
				h.viewport.ScrollDown(1)
			} else {
				h.viewport.ScrollUp(1)
			}
		case tea.MouseButtonWheelDown:
			if h.reverseScrollWheel {
				h.viewport.ScrollUp(1)
			} else {
				h.viewport.ScrollDown(1)
			}
		}
	}
	return nil, nil
}

func (h *HelpPage) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	modalWidth := max(20, width-8)   // 4 chars margin on each side
	modalHeight := max(8, height-4)  // 2 lines margin top and bottom
	contentWidth := modalWidth - 4   // borders
	contentHeight := modalHeight - 4 // header + status

	h.viewport.Width = contentWidth
	h.viewport.Height = contentHeight
	h.viewport.SetContent(h.content())

	contentPane := lipgloss.NewStyle().
		Width(contentWidth).
		Height(contentHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(ColorGray).
		Render(h.viewport.View())

	header := lipgloss.NewStyle().
		Width(contentWidth).
		Foreground(ColorBlue).
		Bold(true).
		Render("Help")

	statusBar := lipgloss.NewStyle().
		Foreground(ColorGray).
		Render("up/down/Wheel: Scroll | ?/ESC: Close")

	modal := lipgloss.JoinVertical(lipgloss.Left, header, contentPane, statusBar)

	finalModal := lipgloss.NewStyle().
		Width(modalWidth).
		Height(modalHeight).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBlue).
		Render(modal)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, finalModal)
}

func (h *HelpPage) content() string {
	groups := []struct {
		title    string
		bindings []key.Binding
	}{
		{"NAVIGATION", []key.Binding{h.keys.Up, h.keys.Down, h.keys.NextCard, h.keys.PrevCard, h.keys.Home, h.keys.End, h.keys.FocusE2E, h.keys.FocusPayload, h.keys.Toggle}},
		{"SEARCH", []key.Binding{h.keys.Search, h.keys.Submit, h.keys.Escape, h.keys.Refresh}},
		{"ACTIONS", []key.Binding{h.keys.Retest, h.keys.RetestAll, h.keys.Analyze, h.keys.Open}},
		{"GLOBAL", []key.Binding{h.keys.Help, h.keys.Quit, h.keys.ForceQuit}},
	}

	var b strings.Builder
	b.WriteString("PR CI Dashboard\n\n")
	for _, g := range groups {
		b.WriteString(g.title + ":\n")
		for _, kb := range g.bindings {
			hk := kb.Help()
			b.WriteString("  " + padRight(hk.Key, 14) + " - " + hk.Desc + "\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(`RETESTS:
  Retesting a failed job posts a retest comment on the PR. The job keeps a
  "⏳ Retesting..." button until it shows up as running or polling times out.
  Retest All submits every failed job listed in the section.
`)
	return b.String()
}

func padRight(s string, n int) string {
	if w := lipgloss.Width(s); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s
}
