package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/prci/internal/card"
	"github.com/tinytelemetry/prci/internal/model"
	"github.com/tinytelemetry/prci/internal/retest"
)

var epoch = time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)

func TestStartup_SearchesDefaultQuery(t *testing.T) {
	b := newFakeBackend()
	b.jobs[retest.PRKeyOf(prA)] = model.PRJobs{
		E2E:     model.JobSet{Failed: []model.JobStatus{{Name: "test-a", Consecutive: 3}}, Running: []model.JobStatus{}},
		Payload: failedJobs(),
	}
	m := startDashboard(t, b, &fakeClock{now: epoch}, time.Hour)

	searches, _, _ := b.calls()
	if len(searches) != 1 || searches[0] != model.DefaultQuery {
		t.Fatalf("searches = %q", searches)
	}
	if m.input.Value() != model.DefaultQuery {
		t.Fatalf("input = %q", m.input.Value())
	}
	if len(m.cards) != 1 {
		t.Fatalf("cards = %d, want 1", len(m.cards))
	}

	e2e := m.cards[0].Section(model.JobClassE2E)
	if got := e2e.Header(); got != "E2E Jobs (1 failed | 0 running)" {
		t.Fatalf("header = %q", got)
	}
	if len(e2e.Rows) != 1 || e2e.Rows[0].Job.Name != "test-a" {
		t.Fatalf("rows = %+v", e2e.Rows)
	}
	if btn := e2e.Rows[0].Retest; btn.Label != card.LabelRetest || btn.Disabled {
		t.Fatalf("retest button = %+v", btn)
	}
	if m.placeholder != "" {
		t.Fatalf("placeholder = %q", m.placeholder)
	}
	if m.BannerVisible() {
		t.Fatalf("banner shown for authenticated backend: %q", m.banner)
	}
}

func TestStartup_AuthBanner(t *testing.T) {
	b := newFakeBackend()
	b.auth = model.AuthStatus{Authenticated: false, Error: "gh auth status: not logged in"}
	m := startDashboard(t, b, &fakeClock{now: epoch}, time.Hour)

	if m.banner != "⚠️ gh auth status: not logged in" {
		t.Fatalf("banner = %q", m.banner)
	}
	if len(m.cards) != 1 {
		t.Fatalf("search should still run, cards = %d", len(m.cards))
	}
}

func TestStartup_AuthCheckUnreachable(t *testing.T) {
	b := newFakeBackend()
	b.authErr = errors.New("connection refused")
	m := startDashboard(t, b, &fakeClock{now: epoch}, time.Hour)

	if m.banner != "⚠️ Failed to check authentication status" {
		t.Fatalf("banner = %q", m.banner)
	}
}

func TestStartup_QueryOverride(t *testing.T) {
	b := newFakeBackend()
	tracker := retest.NewTracker(retest.Config{})
	m := NewDashboardModel(Options{Backend: b, Tracker: tracker, Query: "is:pr repo:openshift/installer"})
	pump(m, m.Init())

	searches, _, _ := b.calls()
	if len(searches) != 1 || searches[0] != "is:pr repo:openshift/installer" {
		t.Fatalf("searches = %q", searches)
	}
}

func TestStartup_DefaultQueryFailureFallsBack(t *testing.T) {
	b := newFakeBackend()
	b.queryErr = errors.New("timeout")
	startDashboard(t, b, &fakeClock{now: epoch}, time.Hour)

	searches, _, _ := b.calls()
	if len(searches) != 1 || searches[0] != model.DefaultQuery {
		t.Fatalf("searches = %q", searches)
	}
}

func TestInit_OnlyBootstrapsOnce(t *testing.T) {
	b := newFakeBackend()
	m := startDashboard(t, b, &fakeClock{now: epoch}, time.Hour)
	if cmd := m.Init(); cmd != nil {
		t.Fatal("second Init should be a no-op")
	}
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		toast string
	}{
		{"backend error", &model.APIError{Message: "gh: rate limited"}, "gh: rate limited"},
		{"transport error", errors.New("connection reset"), "Search failed: connection reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend()
			b.searchErr = tt.err
			m := startDashboard(t, b, &fakeClock{now: epoch}, time.Hour)

			if !hasToast(m, tt.toast) {
				t.Fatalf("toasts = %q, want %q", toastTexts(m), tt.toast)
			}
			if m.placeholder != "" {
				t.Fatalf("searching placeholder left behind: %q", m.placeholder)
			}
			if len(m.cards) != 0 {
				t.Fatalf("cards = %d", len(m.cards))
			}
		})
	}
}

func TestSearch_NoPRs(t *testing.T) {
	b := newFakeBackend()
	b.searchResult = model.SearchResult{PRs: []model.PullRequest{}, Total: 0}
	m := startDashboard(t, b, &fakeClock{now: epoch}, time.Hour)

	if m.placeholder != "No PRs found" {
		t.Fatalf("placeholder = %q", m.placeholder)
	}
	if !strings.Contains(m.View(), "No PRs found") {
		t.Fatal("view does not show the empty result")
	}
}

func TestSearch_SupersededResultDropped(t *testing.T) {
	b := newFakeBackend()
	m := startDashboard(t, b, &fakeClock{now: epoch}, time.Hour)

	m.runSearch("is:pr author:someone")
	stale := searchResultMsg{gen: m.searchGen - 1, result: model.SearchResult{PRs: []model.PullRequest{prA, prB}, Total: 2}}
	m.Update(stale)

	if len(m.cards) != 0 {
		t.Fatalf("stale result rendered %d cards", len(m.cards))
	}
	if m.placeholder != "Searching PRs..." {
		t.Fatalf("placeholder = %q", m.placeholder)
	}
}

func TestSearch_InputSubmit(t *testing.T) {
	b := newFakeBackend()
	m := startDashboard(t, b, &fakeClock{now: epoch}, time.Hour)

	press(m, "/")
	if !m.inputActive {
		t.Fatal("search input not focused")
	}
	m.input.SetValue("is:pr label:lgtm")
	pump(m, press(m, "enter"))

	searches, _, _ := b.calls()
	if got := searches[len(searches)-1]; got != "is:pr label:lgtm" {
		t.Fatalf("last search = %q", got)
	}
	if m.inputActive {
		t.Fatal("input still focused after submit")
	}
	if m.query != "is:pr label:lgtm" {
		t.Fatalf("query = %q", m.query)
	}
}

func TestSearch_InputEscapeRestoresQuery(t *testing.T) {
	b := newFakeBackend()
	m := startDashboard(t, b, &fakeClock{now: epoch}, time.Hour)

	press(m, "/")
	m.input.SetValue("half typed")
	press(m, "esc")

	if m.input.Value() != model.DefaultQuery {
		t.Fatalf("input = %q", m.input.Value())
	}
	searches, _, _ := b.calls()
	if len(searches) != 1 {
		t.Fatalf("escape should not search, searches = %q", searches)
	}
}

func TestRefresh_ReissuesQuery(t *testing.T) {
	b := newFakeBackend()
	m := startDashboard(t, b, &fakeClock{now: epoch}, time.Hour)

	cmd := press(m, "r")
	if len(m.cards) != 0 || m.placeholder != "Searching PRs..." {
		t.Fatalf("refresh should clear cards, cards=%d placeholder=%q", len(m.cards), m.placeholder)
	}
	pump(m, cmd)

	searches, _, _ := b.calls()
	if len(searches) != 2 || searches[1] != model.DefaultQuery {
		t.Fatalf("searches = %q", searches)
	}
	if len(m.cards) != 1 {
		t.Fatalf("cards = %d", len(m.cards))
	}
}

func TestPRJobs_ErrorShowsOnCard(t *testing.T) {
	b := newFakeBackend()
	b.jobsErr = errors.New("backend exploded")
	m := newTestDashboard(b, &fakeClock{now: epoch}, time.Hour)
	pump(m, m.Init())

	if got := m.cards[0].Err; got != "⚠️ Error: backend exploded" {
		t.Fatalf("card error = %q", got)
	}
	if !strings.Contains(m.View(), "backend exploded") {
		t.Fatal("card error not rendered")
	}
}

func TestPRJobs_UnknownCardIgnored(t *testing.T) {
	b := newFakeBackend()
	m := startDashboard(t, b, &fakeClock{now: epoch}, time.Hour)

	m.Update(prJobsLoadedMsg{pr: retest.PRKeyOf(prB), jobs: model.PRJobs{E2E: failedJobs("x")}})
	if len(m.cards) != 1 || m.cardByKey(retest.PRKeyOf(prB)) != nil {
		t.Fatal("result for an absent card changed the list")
	}
}

func TestToasts_Expire(t *testing.T) {
	m := newTestDashboard(newFakeBackend(), &fakeClock{now: epoch}, time.Hour)
	m.showToast("one", toastSuccess)
	m.showToast("two", toastError)

	m.Update(toastExpiredMsg{id: 1})
	if got := toastTexts(m); len(got) != 1 || got[0] != "two" {
		t.Fatalf("toasts = %q", got)
	}
	m.Update(toastExpiredMsg{id: 99})
	if len(m.toasts) != 1 {
		t.Fatal("unknown toast id removed a toast")
	}
}

func TestHideLoading_OnlyRemovesSearching(t *testing.T) {
	m := newTestDashboard(newFakeBackend(), &fakeClock{now: epoch}, time.Hour)

	m.showLoading("No PRs found")
	m.hideLoading()
	if m.placeholder != "No PRs found" {
		t.Fatalf("placeholder = %q", m.placeholder)
	}

	m.showLoading("Searching PRs...")
	m.hideLoading()
	if m.placeholder != "" {
		t.Fatalf("placeholder = %q", m.placeholder)
	}
}

func TestAnalyzeKey_ShowsToast(t *testing.T) {
	m := startDashboard(t, newFakeBackend(), &fakeClock{now: epoch}, time.Hour)
	press(m, "a")
	if !hasToast(m, "Analyze is not available yet") {
		t.Fatalf("toasts = %q", toastTexts(m))
	}
}

func TestOpenKey_OpensPRURL(t *testing.T) {
	var opened []string
	b := newFakeBackend()
	m := NewDashboardModel(Options{
		Backend: b,
		OpenURL: func(url string) error {
			opened = append(opened, url)
			return errors.New("no browser")
		},
	})
	pump(m, m.Init())
	pump(m, press(m, "o"))

	if len(opened) != 1 || opened[0] != "https://github.com/openshift/ovn-kubernetes/pull/2481" {
		t.Fatalf("opened = %q", opened)
	}
	if !hasToast(m, "Could not open https://github.com/openshift/ovn-kubernetes/pull/2481: no browser") {
		t.Fatalf("toasts = %q", toastTexts(m))
	}
}

func TestNavigation(t *testing.T) {
	b := newFakeBackend()
	b.searchResult = model.SearchResult{PRs: []model.PullRequest{prA, prB}, Total: 2}
	b.jobs[retest.PRKeyOf(prB)] = model.PRJobs{E2E: failedJobs(), Payload: failedJobs("p-1")}
	m := startDashboard(t, b, &fakeClock{now: epoch}, time.Hour)

	// Collapsed sections: the cursor visits headers only.
	press(m, "j")
	if m.CursorState != (CursorState{cardIdx: 0, sectionIdx: 1, row: -1}) {
		t.Fatalf("cursor = %+v", m.CursorState)
	}
	press(m, "k")
	press(m, " ")
	if !m.cards[0].Sections[0].Expanded {
		t.Fatal("space did not expand the section")
	}
	press(m, "j")
	press(m, "j")
	if m.CursorState != (CursorState{cardIdx: 0, sectionIdx: 0, row: 1}) {
		t.Fatalf("cursor = %+v", m.CursorState)
	}

	press(m, "tab")
	if m.cardIdx != 1 || m.row != -1 {
		t.Fatalf("tab cursor = %+v", m.CursorState)
	}
	press(m, "p")
	if m.sectionIdx != 1 {
		t.Fatalf("p cursor = %+v", m.CursorState)
	}
	press(m, "tab")
	if m.cardIdx != 0 {
		t.Fatalf("tab should wrap, cursor = %+v", m.CursorState)
	}
	press(m, "shift+tab")
	if m.cardIdx != 1 {
		t.Fatalf("shift+tab cursor = %+v", m.CursorState)
	}

	// Expanded state survives a re-render.
	m.Update(prJobsLoadedMsg{pr: retest.PRKeyOf(prA), jobs: model.PRJobs{E2E: failedJobs("test-a"), Payload: failedJobs()}})
	if !m.cards[0].Sections[0].Expanded {
		t.Fatal("expanded state lost on re-render")
	}
}

func TestView_RendersCard(t *testing.T) {
	m := startDashboard(t, newFakeBackend(), &fakeClock{now: epoch}, time.Hour)
	expandAndSelect(m, 0)

	view := m.View()
	for _, want := range []string{
		"#2481",
		"openshift/ovn-kubernetes • bot • 3 days old",
		"E2E Jobs (2 failed | 0 running)",
		"Payload Jobs (0 failed | 0 running)",
		"❌ test-a (1 consecutive)",
		"Retest All E2E",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestApp_HelpRoutingKeepsDashboardAlive(t *testing.T) {
	b := newFakeBackend()
	m := newTestDashboard(b, &fakeClock{now: epoch}, time.Hour)
	app := NewApp(NewDashboardPage(m), NewHelpPage(false))
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	if app.ActivePage() != PageHelp {
		t.Fatalf("active page = %q", app.ActivePage())
	}
	if !strings.Contains(app.View(), "retest all") {
		t.Fatal("help does not list key bindings")
	}

	// Results delivered while help is shown still reach the dashboard.
	app.Update(searchResultMsg{gen: m.searchGen, result: model.SearchResult{PRs: []model.PullRequest{prA}, Total: 1}})
	if len(m.cards) != 1 {
		t.Fatalf("cards = %d", len(m.cards))
	}

	// Keys go to the help page only.
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if len(m.cards) != 1 {
		t.Fatal("key leaked to the dashboard while help was shown")
	}

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if app.ActivePage() != PageDashboard {
		t.Fatalf("active page = %q", app.ActivePage())
	}
}
