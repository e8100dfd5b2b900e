// Package card holds the view model of one PR card: its header and the E2E
// and Payload job sections with their buttons.
package card

import (
	"fmt"
	"strings"
	"time"

	"github.com/tinytelemetry/prci/internal/model"
	"github.com/tinytelemetry/prci/internal/retest"
)

// Button labels.
const (
	LabelRetest       = "Retest"
	LabelRetesting    = "⏳ Retesting..."
	LabelRetestingAll = "⏳ Retesting all..."
	LabelAnalyze      = "Analyze"
	LabelNoFailed     = "✅ No failed jobs"
)

// RetestState is the part of the retest tracker the renderer consults.
type RetestState interface {
	IsRetesting(key retest.Key) bool
	Resolve(key retest.Key) bool
}

// Button is a rendered action. Disabled buttons ignore activation.
type Button struct {
	Label    string
	Disabled bool
}

// Row is one failed job with its actions.
type Row struct {
	Job     model.JobStatus
	Retest  Button
	Analyze Button
}

// Text is the row label shown next to its buttons.
func (r Row) Text() string {
	return fmt.Sprintf("❌ %s (%d consecutive)", r.Job.Name, r.Job.Consecutive)
}

// Card is the rendered state of one PR.
type Card struct {
	PR       model.PullRequest
	Sections []*Section
	Err      string // inline error from the last job fetch
}

// New returns a card whose sections are in the loading state.
func New(pr model.PullRequest) *Card {
	c := &Card{PR: pr}
	for _, class := range model.JobClasses {
		c.Sections = append(c.Sections, &Section{Class: class, Loading: true})
	}
	return c
}

// Key identifies the card's PR.
func (c *Card) Key() retest.PRKey { return retest.PRKeyOf(c.PR) }

// URL is the PR's page on GitHub.
func (c *Card) URL() string {
	return fmt.Sprintf("https://github.com/%s/%s/pull/%d", c.PR.Owner, c.PR.Repo, c.PR.Number)
}

// Title is the card headline.
func (c *Card) Title() string {
	return fmt.Sprintf("#%d - %s", c.PR.Number, c.PR.Title)
}

// Meta is the card's owner/repo, author and age line.
func (c *Card) Meta(now time.Time) string {
	return fmt.Sprintf("%s/%s • %s • %s", c.PR.Owner, c.PR.Repo, c.PR.Author, Age(c.PR.CreatedAt, now))
}

// Section returns the section for class.
func (c *Card) Section(class model.JobClass) *Section {
	for _, s := range c.Sections {
		if s.Class == class {
			return s
		}
	}
	return nil
}

// Apply renders freshly fetched job data into both sections.
func (c *Card) Apply(jobs model.PRJobs, state RetestState) {
	c.Err = ""
	pr := c.Key()
	for _, s := range c.Sections {
		s.update(pr, jobs.Set(s.Class), state)
	}
}

// SetError records a failed job fetch. Sections keep their previous content.
func (c *Card) SetError(err error) {
	c.Err = "⚠️ Error: " + err.Error()
}

// DisableRetestButtons disables every button whose label mentions Retest.
func (c *Card) DisableRetestButtons() {
	for _, s := range c.Sections {
		s.disableRetestButtons()
	}
}

// Age formats the whole days between created and now.
func Age(created, now time.Time) string {
	days := int(now.Sub(created) / (24 * time.Hour))
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "1 day old"
	default:
		return fmt.Sprintf("%d days old", days)
	}
}

func disableIfRetest(b *Button) {
	if strings.Contains(b.Label, "Retest") {
		b.Disabled = true
	}
}
