package card

import (
	"fmt"

	"github.com/tinytelemetry/prci/internal/model"
	"github.com/tinytelemetry/prci/internal/retest"
)

// Section is one job class of a card.
type Section struct {
	Class     model.JobClass
	Loading   bool
	Expanded  bool // survives re-renders
	Rows      []Row
	Running   int
	RetestAll *Button // nil when there are no failed jobs
	Error     string  // backend-reported failure for this class
}

// Header is the section summary line.
func (s *Section) Header() string {
	if s.Loading {
		return fmt.Sprintf("%s Jobs (loading...)", s.Class.DisplayName())
	}
	return fmt.Sprintf("%s Jobs (%d failed | %d running)", s.Class.DisplayName(), len(s.Rows), s.Running)
}

// Empty reports whether the section shows the no-failed-jobs indicator.
func (s *Section) Empty() bool {
	return !s.Loading && len(s.Rows) == 0
}

// update replaces the section content with set. Failed jobs that are tracked
// and now running are dropped and resolved in state.
func (s *Section) update(pr retest.PRKey, set model.JobSet, state RetestState) {
	failed := make([]model.JobStatus, 0, len(set.Failed))
	for _, job := range set.Failed {
		key := pr.Job(job.Name)
		if state != nil && set.HasRunning(job.Name) && state.IsRetesting(key) {
			state.Resolve(key)
			continue
		}
		failed = append(failed, job)
	}

	s.Loading = false
	s.Error = set.Error
	s.Running = len(set.Running)
	s.Rows = s.Rows[:0]
	s.RetestAll = nil

	enabled := 0
	for _, job := range failed {
		row := Row{
			Job:     job,
			Retest:  Button{Label: LabelRetest},
			Analyze: Button{Label: LabelAnalyze, Disabled: true},
		}
		if state != nil && state.IsRetesting(pr.Job(job.Name)) {
			row.Retest = Button{Label: LabelRetesting, Disabled: true}
		} else {
			enabled++
		}
		s.Rows = append(s.Rows, row)
	}

	if len(s.Rows) == 0 {
		return
	}
	name := s.Class.DisplayName()
	if enabled == 0 {
		s.RetestAll = &Button{Label: fmt.Sprintf("Retest All %s (all retesting...)", name), Disabled: true}
	} else {
		s.RetestAll = &Button{Label: "Retest All " + name}
	}
}

// Toggle flips the expanded state.
func (s *Section) Toggle() { s.Expanded = !s.Expanded }

// PressRetest activates the retest button of row i. It returns the job name
// to submit, or false when the button is disabled or i is out of range.
func (s *Section) PressRetest(i int) (string, bool) {
	if i < 0 || i >= len(s.Rows) {
		return "", false
	}
	row := &s.Rows[i]
	if row.Retest.Disabled {
		return "", false
	}
	row.Retest = Button{Label: LabelRetesting, Disabled: true}
	return row.Job.Name, true
}

// PressRetestAll activates the Retest All button. It disables every enabled
// row button and returns the names of all rows currently rendered.
func (s *Section) PressRetestAll() ([]string, bool) {
	if s.RetestAll == nil || s.RetestAll.Disabled {
		return nil, false
	}
	s.RetestAll = &Button{Label: LabelRetestingAll, Disabled: true}
	for i := range s.Rows {
		if !s.Rows[i].Retest.Disabled {
			s.Rows[i].Retest = Button{Label: LabelRetesting, Disabled: true}
		}
	}
	return s.RenderedJobNames(), true
}

// RenderedJobNames returns the names of the failed jobs as rendered.
func (s *Section) RenderedJobNames() []string {
	names := make([]string, 0, len(s.Rows))
	for _, r := range s.Rows {
		names = append(names, r.Job.Name)
	}
	return names
}

func (s *Section) disableRetestButtons() {
	for i := range s.Rows {
		disableIfRetest(&s.Rows[i].Retest)
		disableIfRetest(&s.Rows[i].Analyze)
	}
	if s.RetestAll != nil {
		disableIfRetest(s.RetestAll)
	}
}
