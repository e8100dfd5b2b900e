package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tinytelemetry/prci/internal/card"
	"github.com/tinytelemetry/prci/internal/logger"
	"github.com/tinytelemetry/prci/internal/model"
	"github.com/tinytelemetry/prci/internal/retest"
)

const (
	searchingText = "Searching PRs..."
	noPRsText     = "No PRs found"
	authCheckText = "Failed to check authentication status"
)

// bootstrapCmd checks auth and loads the default query concurrently.
func (m *DashboardModel) bootstrapCmd() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		var msg bootstrapMsg
		var g errgroup.Group
		g.Go(func() error {
			ctx, cancel := m.requestContext()
			defer cancel()
			msg.auth, msg.authErr = backend.AuthStatus(ctx)
			return nil
		})
		g.Go(func() error {
			ctx, cancel := m.requestContext()
			defer cancel()
			msg.query, msg.queryErr = backend.DefaultQuery(ctx)
			return nil
		})
		_ = g.Wait()
		return msg
	}
}

func (m *DashboardModel) handleBootstrap(msg bootstrapMsg) tea.Cmd {
	switch {
	case msg.authErr != nil:
		logger.Error("auth check failed", msg.authErr)
		m.showAuthBanner(authCheckText)
	case !msg.auth.Authenticated:
		logger.Warn("backend not authenticated", zap.String("error", msg.auth.Error))
		m.showAuthBanner(msg.auth.Error)
	}

	query := m.input.Value()
	if query == "" {
		query = msg.query
		if msg.queryErr != nil {
			logger.Error("default query failed", msg.queryErr)
			query = model.DefaultQuery
		}
		m.input.SetValue(query)
	}
	return m.runSearch(query)
}

// runSearch replaces the card list with the results of query.
func (m *DashboardModel) runSearch(query string) tea.Cmd {
	m.query = query
	m.searchGen++
	gen := m.searchGen
	m.showLoading(searchingText)

	backend := m.backend
	page, perPage := m.page, m.perPage
	logger.Debug("search", zap.String("query", query), zap.Int("page", page), zap.Int("gen", gen))

	restartSpinner := !m.searching
	m.searching = true
	search := func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		res, err := backend.Search(ctx, query, page, perPage)
		return searchResultMsg{gen: gen, result: res, err: err}
	}
	if restartSpinner {
		return tea.Batch(search, m.spinner.Tick)
	}
	return search
}

// refresh re-runs the current input from the first page.
func (m *DashboardModel) refresh() tea.Cmd {
	m.page = 1
	m.cards = nil
	return m.runSearch(m.input.Value())
}

func (m *DashboardModel) handleSearchResult(msg searchResultMsg) tea.Cmd {
	if msg.gen != m.searchGen {
		logger.Debug("dropping superseded search result", zap.Int("gen", msg.gen), zap.Int("current", m.searchGen))
		return nil
	}
	m.searching = false

	if msg.err != nil {
		m.hideLoading()
		if text, ok := backendMessage(msg.err); ok {
			logger.Warn("search rejected", zap.String("error", text))
			return m.showToast(text, toastError)
		}
		logger.Error("search failed", msg.err, zap.String("query", m.query))
		return m.showToast("Search failed: "+msg.err.Error(), toastError)
	}

	m.total = msg.result.Total
	m.hideLoading()
	return m.renderCards(msg.result.PRs)
}

// renderCards shows one loading card per PR and starts their detail loads.
func (m *DashboardModel) renderCards(prs []model.PullRequest) tea.Cmd {
	m.cards = nil
	m.CursorState = CursorState{row: -1}
	m.viewport.GotoTop()
	if len(prs) == 0 {
		m.placeholder = noPRsText
		return nil
	}

	cmds := make([]tea.Cmd, 0, len(prs))
	for _, pr := range prs {
		c := card.New(pr)
		m.cards = append(m.cards, c)
		cmds = append(cmds, m.loadJobsCmd(c.Key()))
	}
	return tea.Batch(cmds...)
}

// loadJobsCmd fetches the job details of pr.
func (m *DashboardModel) loadJobsCmd(pr retest.PRKey) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		jobs, err := backend.PRJobs(ctx, pr.Owner, pr.Repo, pr.Number)
		return prJobsLoadedMsg{pr: pr, jobs: jobs, err: err}
	}
}

func (m *DashboardModel) handlePRJobs(msg prJobsLoadedMsg) {
	c := m.cardByKey(msg.pr)
	if c == nil {
		return
	}
	if msg.err != nil {
		logger.Error("load PR jobs failed", msg.err,
			zap.String("owner", msg.pr.Owner), zap.String("repo", msg.pr.Repo), zap.Int("number", msg.pr.Number))
		c.SetError(msg.err)
		return
	}
	c.Apply(msg.jobs, m.tracker)
	m.clampCursor()
}

// handleSearchInputKey edits the query while the input has focus.
func (m *DashboardModel) handleSearchInputKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.inputActive = false
		m.input.Blur()
		m.input.SetValue(m.query)
		return nil
	case key.Matches(msg, m.keys.Submit):
		m.inputActive = false
		m.input.Blur()
		return m.runSearch(m.input.Value())
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// backendMessage returns the text of an error reported by the backend
// itself, as opposed to a transport failure.
func backendMessage(err error) (string, bool) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message, true
	}
	if errors.Is(err, model.ErrAuthFailed) {
		return model.ErrAuthFailed.Error(), true
	}
	return "", false
}
