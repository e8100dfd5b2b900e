package tui

import (
	"github.com/tinytelemetry/prci/internal/card"
	"github.com/tinytelemetry/prci/internal/model"
)

// focusPoints lists every position the cursor can rest on, in render order:
// each section header followed by its rows when expanded.
func (m *DashboardModel) focusPoints() []CursorState {
	var points []CursorState
	for ci, c := range m.cards {
		for si, s := range c.Sections {
			points = append(points, CursorState{cardIdx: ci, sectionIdx: si, row: -1})
			if !s.Expanded {
				continue
			}
			for r := range s.Rows {
				points = append(points, CursorState{cardIdx: ci, sectionIdx: si, row: r})
			}
		}
	}
	return points
}

// focused returns the card and section under the cursor.
func (m *DashboardModel) focused() (*card.Card, *card.Section) {
	if m.cardIdx < 0 || m.cardIdx >= len(m.cards) {
		return nil, nil
	}
	c := m.cards[m.cardIdx]
	if m.sectionIdx < 0 || m.sectionIdx >= len(c.Sections) {
		return c, nil
	}
	return c, c.Sections[m.sectionIdx]
}

// moveCursor moves the cursor by delta focus points.
func (m *DashboardModel) moveCursor(delta int) {
	points := m.focusPoints()
	if len(points) == 0 {
		return
	}
	idx := 0
	for i, p := range points {
		if p == m.CursorState {
			idx = i
			break
		}
	}
	idx = max(0, min(len(points)-1, idx+delta))
	m.CursorState = points[idx]
}

// moveCard moves the cursor to the first section of the next or previous card.
func (m *DashboardModel) moveCard(delta int) {
	if len(m.cards) == 0 {
		return
	}
	m.focusCard((m.cardIdx + delta + len(m.cards)) % len(m.cards))
}

func (m *DashboardModel) focusCard(idx int) {
	if idx < 0 || idx >= len(m.cards) {
		return
	}
	m.CursorState = CursorState{cardIdx: idx, row: -1}
}

// focusSection moves the cursor to the header of class in the current card.
func (m *DashboardModel) focusSection(class model.JobClass) {
	c, _ := m.focused()
	if c == nil {
		return
	}
	for i, s := range c.Sections {
		if s.Class == class {
			m.sectionIdx = i
			m.row = -1
			return
		}
	}
}

// toggleSection expands or collapses the focused section.
func (m *DashboardModel) toggleSection() {
	_, s := m.focused()
	if s == nil {
		return
	}
	s.Toggle()
	if !s.Expanded {
		m.row = -1
	}
}

// clampCursor keeps the cursor on an existing row after a re-render.
func (m *DashboardModel) clampCursor() {
	_, s := m.focused()
	if s == nil {
		return
	}
	if !s.Expanded || m.row >= len(s.Rows) {
		m.row = min(m.row, len(s.Rows)-1)
		if !s.Expanded {
			m.row = -1
		}
	}
}
