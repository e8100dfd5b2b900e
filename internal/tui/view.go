package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/prci/internal/card"
)

// View renders the dashboard
func (m *DashboardModel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return "Initializing dashboard..."
	}
	if m.height < 10 || m.width < 40 {
		return "Terminal too small. Resize to at least 40x10."
	}

	header := m.renderHeader()
	toasts := m.renderToasts(m.width)
	status := m.renderStatusLine()

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(status)
	if toasts != "" {
		bodyHeight -= lipgloss.Height(toasts)
	}
	bodyHeight = max(1, bodyHeight)

	var body string
	if m.placeholder != "" && len(m.cards) == 0 {
		body = m.renderPlaceholder(m.width, bodyHeight)
	} else {
		body = m.renderCardList(m.width, bodyHeight)
	}

	parts := []string{header, body}
	if toasts != "" {
		parts = append(parts, lipgloss.PlaceHorizontal(m.width, lipgloss.Right, toasts))
	}
	parts = append(parts, status)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderHeader renders the title, the search input and the auth banner.
func (m *DashboardModel) renderHeader() string {
	title := titleStyle.Render("PR CI Dashboard")
	if m.total > 0 {
		title += dimStyle.Render(fmt.Sprintf("  %d of %d PRs", len(m.cards), m.total))
	}

	input := m.input.View()
	if !m.inputActive {
		input = dimStyle.Render(input)
	}

	lines := []string{title, input}
	if m.banner != "" {
		lines = append(lines, bannerStyle.Width(m.width).Render(m.banner))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderCardList renders every card into the viewport, scrolled so the
// cursor stays visible.
func (m *DashboardModel) renderCardList(width, height int) string {
	var blocks []string
	cursorLine := 0
	offset := 0
	for i, c := range m.cards {
		block, line := m.renderCard(c, i == m.cardIdx, width)
		if i == m.cardIdx {
			cursorLine = offset + line
		}
		blocks = append(blocks, block)
		offset += lipgloss.Height(block)
	}

	m.viewport.Width = width
	m.viewport.Height = height
	m.viewport.SetContent(strings.Join(blocks, "\n"))
	if cursorLine < m.viewport.YOffset {
		m.viewport.SetYOffset(cursorLine)
	} else if cursorLine >= m.viewport.YOffset+height {
		m.viewport.SetYOffset(cursorLine - height + 1)
	}
	return m.viewport.View()
}

// renderCard renders one card and returns the line of the cursor within it.
func (m *DashboardModel) renderCard(c *card.Card, focused bool, width int) (string, int) {
	style := cardStyle
	if focused {
		style = focusedCardStyle
	}
	inner := max(10, width-style.GetHorizontalFrameSize())

	lines := []string{
		linkStyle.Render(fmt.Sprintf("#%d", c.PR.Number)) + " - " + boldStyle.Render(c.PR.Title) + stateBadge(c.PR.State),
		dimStyle.Render(c.Meta(m.now())),
	}

	cursorLine := 0
	for si, s := range c.Sections {
		if focused && si == m.sectionIdx && m.row < 0 {
			cursorLine = len(lines)
		}
		lines = append(lines, m.renderSectionHeader(s, focused && si == m.sectionIdx && m.row < 0))
		if s.Error != "" {
			lines = append(lines, "  "+warnStyle.Render("⚠️ "+s.Error))
		}
		if !s.Expanded || s.Loading {
			continue
		}
		if s.Empty() {
			lines = append(lines, "  "+okStyle.Render(card.LabelNoFailed))
			continue
		}
		for ri, row := range s.Rows {
			selected := focused && si == m.sectionIdx && ri == m.row
			if selected {
				cursorLine = len(lines)
			}
			lines = append(lines, renderRow(row, selected))
		}
		if s.RetestAll != nil {
			lines = append(lines, "  "+renderButton(*s.RetestAll))
		}
	}
	if c.Err != "" {
		lines = append(lines, errStyle.Render(c.Err))
	}

	// +1 for the top border.
	return style.Width(inner).Render(strings.Join(lines, "\n")), cursorLine + 1
}

func (m *DashboardModel) renderSectionHeader(s *card.Section, selected bool) string {
	arrow := "▶"
	if s.Expanded {
		arrow = "▼"
	}
	text := arrow + " " + s.Header()
	if selected {
		return cursorStyle.Render(text)
	}
	return sectionHeaderStyle.Render(text)
}

func renderRow(row card.Row, selected bool) string {
	text := row.Text()
	if selected {
		text = cursorStyle.Render(text)
	}
	return "  " + renderButton(row.Retest) + " " + renderButton(row.Analyze) + " " + text
}

func renderButton(b card.Button) string {
	if b.Disabled {
		return disabledButtonStyle.Render("[" + b.Label + "]")
	}
	return buttonStyle.Render(b.Label)
}

func stateBadge(state string) string {
	if state == "" || strings.EqualFold(state, "open") {
		return ""
	}
	return " " + warnStyle.Render("["+strings.ToUpper(state)+"]")
}

// renderStatusLine renders the key hints and retest count at the bottom.
func (m *DashboardModel) renderStatusLine() string {
	w := m.width

	var left string
	switch {
	case m.inputActive:
		left = "Enter: Search • ESC: Cancel"
	case w < 80:
		left = "?: Help • ↑↓ • t: Retest • q"
	default:
		left = "?: Help • /: Search • r: Refresh • ↑↓/Tab: Navigate • Space: Expand • t/T: Retest • o: Open • q: Quit"
	}

	var right string
	if n := m.tracker.Len(); n > 0 {
		right = fmt.Sprintf("⏳ %d retesting", n)
	}

	gap := max(1, w-lipgloss.Width(left)-lipgloss.Width(right)-2)
	line := " " + left + strings.Repeat(" ", gap) + right + " "
	return statusStyle.Width(w).MaxWidth(w).Render(line)
}
