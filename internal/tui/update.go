package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/prci/internal/model"
	"github.com/tinytelemetry/prci/internal/retest"
)

// bootstrapMsg carries the startup auth check and default query.
type bootstrapMsg struct {
	auth     model.AuthStatus
	authErr  error
	query    string
	queryErr error
}

// searchResultMsg carries one search response.
type searchResultMsg struct {
	gen    int
	result model.SearchResult
	err    error
}

// prJobsLoadedMsg carries the job details of one PR.
type prJobsLoadedMsg struct {
	pr   retest.PRKey
	jobs model.PRJobs
	err  error
}

// retestResultMsg carries the outcome of a retest submission.
type retestResultMsg struct {
	pr    retest.PRKey
	class model.JobClass
	jobs  []string
	err   error
}

// retestPollMsg is one tick of a retest poll loop.
type retestPollMsg struct {
	handle retest.Handle
}

// toastExpiredMsg removes a toast.
type toastExpiredMsg struct {
	id int
}

// openURLResultMsg reports a failed browser launch.
type openURLResultMsg struct {
	url string
	err error
}

// Update handles messages
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(20, msg.Width-8)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		return m.handleMouseEvent(msg)

	case bootstrapMsg:
		return m, m.handleBootstrap(msg)

	case searchResultMsg:
		return m, m.handleSearchResult(msg)

	case prJobsLoadedMsg:
		m.handlePRJobs(msg)
		return m, nil

	case retestResultMsg:
		return m, m.handleRetestResult(msg)

	case retestPollMsg:
		return m, m.handleRetestPoll(msg)

	case toastExpiredMsg:
		m.dismissToast(msg.id)
		return m, nil

	case openURLResultMsg:
		if msg.err != nil {
			return m, m.showToast("Could not open "+msg.url+": "+msg.err.Error(), toastError)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.searching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKeyPress routes a key to the search input when it has focus, and to
// the dashboard shortcuts otherwise.
func (m *DashboardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}
	if m.inputActive {
		return m, m.handleSearchInputKey(msg)
	}
	return m.handleGlobalKeys(msg)
}

// handleGlobalKeys handles dashboard-level shortcuts.
func (m *DashboardModel) handleGlobalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys

	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit

	case key.Matches(msg, k.Help):
		m.nav = navTo(PageHelp)

	case key.Matches(msg, k.Search):
		m.inputActive = true
		return m, m.input.Focus()

	case key.Matches(msg, k.Refresh):
		return m, m.refresh()

	case key.Matches(msg, k.Up):
		m.moveCursor(-1)
	case key.Matches(msg, k.Down):
		m.moveCursor(1)
	case key.Matches(msg, k.NextCard):
		m.moveCard(1)
	case key.Matches(msg, k.PrevCard):
		m.moveCard(-1)
	case key.Matches(msg, k.Home):
		m.focusCard(0)
	case key.Matches(msg, k.End):
		m.focusCard(len(m.cards) - 1)
	case key.Matches(msg, k.FocusE2E):
		m.focusSection(model.JobClassE2E)
	case key.Matches(msg, k.FocusPayload):
		m.focusSection(model.JobClassPayload)
	case key.Matches(msg, k.Toggle):
		m.toggleSection()

	case key.Matches(msg, k.Retest):
		return m, m.pressRetest()
	case key.Matches(msg, k.RetestAll):
		return m, m.pressRetestAll()
	case key.Matches(msg, k.Analyze):
		return m, m.showToast("Analyze is not available yet", toastError)
	case key.Matches(msg, k.Open):
		return m, m.openFocusedPR()
	}

	return m, nil
}

// handleMouseEvent maps the wheel onto the row cursor.
func (m *DashboardModel) handleMouseEvent(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if m.reverseScrollWheel {
			m.moveCursor(1)
		} else {
			m.moveCursor(-1)
		}
	case tea.MouseButtonWheelDown:
		if m.reverseScrollWheel {
			m.moveCursor(-1)
		} else {
			m.moveCursor(1)
		}
	}
	return m, nil
}
