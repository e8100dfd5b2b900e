package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/prci/internal/card"
	"github.com/tinytelemetry/prci/internal/model"
	"github.com/tinytelemetry/prci/internal/retest"
)

// Options configures a DashboardModel.
type Options struct {
	Backend model.Backend
	Tracker *retest.Tracker // a default tracker is created when nil

	// Query, when set, replaces the backend's default query at startup.
	Query string

	PerPage            int
	ToastDuration      time.Duration
	RequestTimeout     time.Duration // 0 leaves requests unbounded
	ReverseScrollWheel bool

	// OpenURL opens a PR page. Defaults to the platform browser launcher.
	OpenURL func(url string) error
	Now     func() time.Time
}

// SearchState holds the search controller's state.
type SearchState struct {
	input       textinput.Model
	inputActive bool
	query       string // last query submitted
	page        int
	perPage     int
	total       int
	searchGen   int // bumped per search; older results are dropped
	searching   bool
}

// FeedbackState holds toasts, the loading placeholder and the auth banner.
type FeedbackState struct {
	toasts        []toast
	nextToastID   int
	toastDuration time.Duration
	placeholder   string
	banner        string
	spinner       spinner.Model
}

// CursorState tracks the focused card, section and row. Row -1 is the
// section header.
type CursorState struct {
	cardIdx    int
	sectionIdx int
	row        int
}

// DashboardModel represents the main TUI model.
// Sub-state is organized into embedded structs for readability.
type DashboardModel struct {
	SearchState
	FeedbackState
	CursorState

	width  int
	height int

	keys     KeyMap
	viewport viewport.Model

	backend        model.Backend
	tracker        *retest.Tracker
	cards          []*card.Card
	requestTimeout time.Duration

	reverseScrollWheel bool
	openURL            func(url string) error
	now                func() time.Time

	started bool
	nav     *PageNav
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel(opts Options) *DashboardModel {
	input := textinput.New()
	input.Placeholder = "GitHub search query..."
	input.Prompt = "🔍 "
	input.CharLimit = 512
	input.SetValue(opts.Query)

	if opts.PerPage <= 0 {
		opts.PerPage = model.DefaultPerPage
	}
	if opts.ToastDuration <= 0 {
		opts.ToastDuration = model.DefaultToastDuration
	}
	if opts.Tracker == nil {
		opts.Tracker = retest.NewTracker(retest.Config{})
	}
	if opts.OpenURL == nil {
		opts.OpenURL = openBrowser
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = dimStyle

	return &DashboardModel{
		SearchState: SearchState{
			input:   input,
			query:   opts.Query,
			page:    1,
			perPage: opts.PerPage,
		},
		FeedbackState: FeedbackState{
			toastDuration: opts.ToastDuration,
			spinner:       sp,
		},
		CursorState:        CursorState{row: -1},
		keys:               DefaultKeyMap(),
		viewport:           viewport.New(80, 20),
		backend:            opts.Backend,
		tracker:            opts.Tracker,
		requestTimeout:     opts.RequestTimeout,
		reverseScrollWheel: opts.ReverseScrollWheel,
		openURL:            opts.OpenURL,
		now:                opts.Now,
	}
}

// Init starts the bootstrap fetches. Later calls are no-ops so returning to
// the dashboard from another page does not search again.
func (m *DashboardModel) Init() tea.Cmd {
	if m.started {
		return nil
	}
	m.started = true
	m.placeholder = "Searching PRs..."
	m.searching = true
	return tea.Batch(
		func() tea.Msg { return tea.EnableMouseCellMotion() },
		m.bootstrapCmd(),
		m.spinner.Tick,
	)
}

// cardByKey returns the card of pr, or nil when it is no longer shown.
func (m *DashboardModel) cardByKey(pr retest.PRKey) *card.Card {
	for _, c := range m.cards {
		if c.Key() == pr {
			return c
		}
	}
	return nil
}

// requestContext bounds one backend call.
func (m *DashboardModel) requestContext() (context.Context, context.CancelFunc) {
	if m.requestTimeout > 0 {
		return context.WithTimeout(context.Background(), m.requestTimeout)
	}
	return context.WithCancel(context.Background())
}

// takeNav returns and clears a pending page switch.
func (m *DashboardModel) takeNav() *PageNav {
	nav := m.nav
	m.nav = nil
	return nav
}

// DashboardPage adapts DashboardModel to the Page interface.
type DashboardPage struct {
	Model *DashboardModel
}

// NewDashboardPage wraps a DashboardModel as a Page.
func NewDashboardPage(m *DashboardModel) *DashboardPage {
	return &DashboardPage{Model: m}
}

func (p *DashboardPage) ID() string { return PageDashboard }

func (p *DashboardPage) Init() tea.Cmd {
	return p.Model.Init()
}

func (p *DashboardPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	_, cmd := p.Model.Update(msg)
	return cmd, p.Model.takeNav()
}

func (p *DashboardPage) View(width, height int) string {
	p.Model.width = width
	p.Model.height = height
	return p.Model.View()
}
