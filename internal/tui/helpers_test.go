package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/prci/internal/card"
	"github.com/tinytelemetry/prci/internal/model"
	"github.com/tinytelemetry/prci/internal/retest"
)

// fakeBackend is a scripted model.Backend that records its calls.
type fakeBackend struct {
	mu sync.Mutex

	auth         model.AuthStatus
	authErr      error
	defaultQuery string
	queryErr     error
	searchResult model.SearchResult
	searchErr    error
	jobs         map[retest.PRKey]model.PRJobs
	jobsErr      error
	retestErr    error

	searchQueries []string
	prJobsCalls   int
	retests       []model.RetestRequest
}

func (b *fakeBackend) AuthStatus(_ context.Context) (model.AuthStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.auth, b.authErr
}

func (b *fakeBackend) DefaultQuery(_ context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.defaultQuery, b.queryErr
}

func (b *fakeBackend) Search(_ context.Context, query string, _, _ int) (model.SearchResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.searchQueries = append(b.searchQueries, query)
	return b.searchResult, b.searchErr
}

func (b *fakeBackend) PRJobs(_ context.Context, owner, repo string, number int) (model.PRJobs, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prJobsCalls++
	if b.jobsErr != nil {
		return model.PRJobs{}, b.jobsErr
	}
	return b.jobs[retest.PRKey{Owner: owner, Repo: repo, Number: number}], nil
}

func (b *fakeBackend) Retest(_ context.Context, req model.RetestRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.retests = append(b.retests, req)
	return b.retestErr
}

func (b *fakeBackend) setJobs(pr retest.PRKey, jobs model.PRJobs) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jobs[pr] = jobs
}

func (b *fakeBackend) calls() (searches []string, prJobs int, retests []model.RetestRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.searchQueries...), b.prJobsCalls, append([]model.RetestRequest(nil), b.retests...)
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

var (
	prA = model.PullRequest{Owner: "openshift", Repo: "ovn-kubernetes", Number: 2481, Title: "Bump deps", Author: "bot",
		CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), State: "OPEN"}
	prB = model.PullRequest{Owner: "openshift", Repo: "cluster-network-operator", Number: 77, Title: "Sync", Author: "bot",
		CreatedAt: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), State: "OPEN"}
)

func failedJobs(names ...string) model.JobSet {
	set := model.JobSet{Failed: []model.JobStatus{}, Running: []model.JobStatus{}}
	for i, n := range names {
		set.Failed = append(set.Failed, model.JobStatus{Name: n, Consecutive: i + 1})
	}
	return set
}

// newFakeBackend serves prA with e2e failures test-a and test-b.
func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		auth:         model.AuthStatus{Authenticated: true},
		defaultQuery: model.DefaultQuery,
		searchResult: model.SearchResult{PRs: []model.PullRequest{prA}, Total: 1},
		jobs: map[retest.PRKey]model.PRJobs{
			retest.PRKeyOf(prA): {E2E: failedJobs("test-a", "test-b"), Payload: failedJobs()},
		},
	}
}

func newTestDashboard(b *fakeBackend, clock *fakeClock, interval time.Duration) *DashboardModel {
	tracker := retest.NewTracker(retest.Config{Interval: interval, Timeout: 5 * time.Minute, Now: clock.Now})
	m := NewDashboardModel(Options{
		Backend: b,
		Tracker: tracker,
		Now:     clock.Now,
		OpenURL: func(string) error { return nil },
	})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

// startDashboard runs the bootstrap until every card has its jobs.
func startDashboard(t *testing.T, b *fakeBackend, clock *fakeClock, interval time.Duration) *DashboardModel {
	t.Helper()
	m := newTestDashboard(b, clock, interval)
	pump(m, m.Init())
	for _, c := range m.cards {
		for _, s := range c.Sections {
			if s.Loading {
				t.Fatalf("card %s still loading after startup", c.Title())
			}
		}
	}
	return m
}

// collect runs cmd and returns the application messages it produces within
// a short window. Timer commands that have not fired are abandoned.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	out := make(chan tea.Msg, 64)
	var run func(c tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		go func() {
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, bc := range batch {
					run(bc)
				}
				return
			}
			switch msg.(type) {
			case bootstrapMsg, searchResultMsg, prJobsLoadedMsg, retestResultMsg,
				retestPollMsg, toastExpiredMsg, openURLResultMsg:
				out <- msg
			}
		}()
	}
	run(cmd)

	var msgs []tea.Msg
	deadline := time.After(100 * time.Millisecond)
	for {
		select {
		case msg := <-out:
			msgs = append(msgs, msg)
		case <-deadline:
			return msgs
		}
	}
}

// pump feeds the results of cmd back into m until nothing more arrives.
// Retest polls are left for the test to deliver.
func pump(m *DashboardModel, cmd tea.Cmd) []retestPollMsg {
	var polls []retestPollMsg
	for i := 0; i < 8 && cmd != nil; i++ {
		var next []tea.Cmd
		for _, msg := range collect(cmd) {
			if poll, ok := msg.(retestPollMsg); ok {
				polls = append(polls, poll)
				continue
			}
			_, c := m.Update(msg)
			next = append(next, c)
		}
		cmd = tea.Batch(next...)
	}
	return polls
}

func press(m *DashboardModel, k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		msg = tea.KeyMsg{Type: tea.KeyShiftTab}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

// expandAndSelect expands the E2E section of the focused card and moves the
// cursor to row.
func expandAndSelect(m *DashboardModel, row int) {
	m.focusSection(model.JobClassE2E)
	_, s := m.focused()
	if !s.Expanded {
		s.Toggle()
	}
	m.row = row
}

func toastTexts(m *DashboardModel) []string {
	texts := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		texts = append(texts, t.text)
	}
	return texts
}

func hasToast(m *DashboardModel, text string) bool {
	for _, t := range toastTexts(m) {
		if t == text {
			return true
		}
	}
	return false
}

func retestButtons(c *card.Card) []card.Button {
	var buttons []card.Button
	for _, s := range c.Sections {
		for _, r := range s.Rows {
			buttons = append(buttons, r.Retest)
		}
		if s.RetestAll != nil {
			buttons = append(buttons, *s.RetestAll)
		}
	}
	return buttons
}
