package tui

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tinytelemetry/prci/internal/card"
	"github.com/tinytelemetry/prci/internal/logger"
	"github.com/tinytelemetry/prci/internal/model"
	"github.com/tinytelemetry/prci/internal/retest"
)

const authFailedText = "GitHub CLI not authenticated. Run: gh auth login"

// pressRetest activates the Retest button of the focused row.
func (m *DashboardModel) pressRetest() tea.Cmd {
	c, s := m.focused()
	if s == nil || m.row < 0 {
		return nil
	}
	name, ok := s.PressRetest(m.row)
	if !ok {
		return nil
	}
	return m.retestCmd(c, s.Class, []string{name})
}

// pressRetestAll activates the Retest All button of the focused section.
func (m *DashboardModel) pressRetestAll() tea.Cmd {
	c, s := m.focused()
	if s == nil {
		return nil
	}
	names, ok := s.PressRetestAll()
	if !ok {
		return nil
	}
	return m.retestCmd(c, s.Class, names)
}

// retestCmd submits a retest of jobs on c's PR.
func (m *DashboardModel) retestCmd(c *card.Card, class model.JobClass, jobs []string) tea.Cmd {
	pr := c.Key()
	req := model.RetestRequest{
		Owner: pr.Owner,
		Repo:  pr.Repo,
		PR:    pr.Number,
		Jobs:  jobs,
		Type:  class,
	}
	backend := m.backend
	logger.Info("retest requested",
		zap.String("owner", pr.Owner), zap.String("repo", pr.Repo), zap.Int("number", pr.Number),
		zap.String("type", string(class)), zap.Strings("jobs", jobs))
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		err := backend.Retest(ctx, req)
		return retestResultMsg{pr: pr, class: class, jobs: jobs, err: err}
	}
}

func (m *DashboardModel) handleRetestResult(msg retestResultMsg) tea.Cmd {
	if msg.err == nil {
		cmds := []tea.Cmd{
			m.showToast(fmt.Sprintf("✅ Retest triggered for %d job(s)", len(msg.jobs)), toastSuccess),
		}
		for _, h := range m.tracker.Mark(msg.pr, msg.jobs) {
			cmds = append(cmds, m.schedulePoll(h))
		}
		return tea.Batch(cmds...)
	}

	if errors.Is(msg.err, model.ErrAuthFailed) {
		logger.Warn("retest rejected: backend not authenticated")
		m.showAuthBanner(authFailedText)
		for _, c := range m.cards {
			c.DisableRetestButtons()
		}
		return nil
	}

	if text, ok := backendMessage(msg.err); ok {
		logger.Warn("retest rejected", zap.String("error", text), zap.Strings("jobs", msg.jobs))
		return m.showToast("❌ Error: "+text, toastError)
	}

	logger.Error("retest failed", msg.err, zap.Strings("jobs", msg.jobs))
	return m.showToast("Retest failed: "+msg.err.Error(), toastError)
}

// schedulePoll schedules the next tick of h's poll loop.
func (m *DashboardModel) schedulePoll(h retest.Handle) tea.Cmd {
	return tea.Tick(m.tracker.Interval(), func(time.Time) tea.Msg {
		return retestPollMsg{handle: h}
	})
}

func (m *DashboardModel) handleRetestPoll(msg retestPollMsg) tea.Cmd {
	switch m.tracker.Poll(msg.handle) {
	case retest.PollStale:
		return nil
	case retest.PollExpired:
		k := msg.handle.Key
		logger.Info("retest polling timed out",
			zap.String("owner", k.Owner), zap.String("repo", k.Repo), zap.Int("number", k.Number), zap.String("job", k.Job))
		return nil
	}

	next := m.schedulePoll(msg.handle)
	if c := m.cardByKey(msg.handle.Key.PR()); c != nil {
		return tea.Batch(next, m.loadJobsCmd(c.Key()))
	}
	return next
}

// openFocusedPR opens the focused card's PR page.
func (m *DashboardModel) openFocusedPR() tea.Cmd {
	c, _ := m.focused()
	if c == nil {
		return nil
	}
	url := c.URL()
	open := m.openURL
	return func() tea.Msg {
		return openURLResultMsg{url: url, err: open(url)}
	}
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Run()
}
