package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type toastKind int

const (
	toastSuccess toastKind = iota
	toastError
)

type toast struct {
	id   int
	kind toastKind
	text string
}

// showToast appends a toast and schedules its removal.
func (m *DashboardModel) showToast(text string, kind toastKind) tea.Cmd {
	m.nextToastID++
	id := m.nextToastID
	m.toasts = append(m.toasts, toast{id: id, kind: kind, text: text})
	return tea.Tick(m.toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m *DashboardModel) dismissToast(id int) {
	for i, t := range m.toasts {
		if t.id == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// showLoading replaces the card list with a placeholder message.
func (m *DashboardModel) showLoading(text string) {
	m.cards = nil
	m.placeholder = text
}

// hideLoading removes the placeholder only while it reports a search.
func (m *DashboardModel) hideLoading() {
	if strings.Contains(m.placeholder, "Searching") {
		m.placeholder = ""
	}
}

// showAuthBanner makes the auth warning visible. It stays for the session.
func (m *DashboardModel) showAuthBanner(text string) {
	m.banner = "⚠️ " + text
}

// BannerVisible reports whether the auth banner is shown.
func (m *DashboardModel) BannerVisible() bool { return m.banner != "" }

func (m *DashboardModel) renderToasts(width int) string {
	if len(m.toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		style := toastSuccessStyle
		if t.kind == toastError {
			style = toastErrorStyle
		}
		lines = append(lines, style.MaxWidth(width).Render(t.text))
	}
	return lipgloss.JoinVertical(lipgloss.Right, lines...)
}

// renderPlaceholder renders the loading or empty-result message centered in
// the card area.
func (m *DashboardModel) renderPlaceholder(width, height int) string {
	text := m.placeholder
	if m.searching && strings.Contains(text, "Searching") {
		text = m.spinner.View() + " " + text
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		dimStyle.Italic(true).Render(text))
}
