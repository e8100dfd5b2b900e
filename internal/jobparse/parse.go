// Package jobparse reads the text report printed by the e2e and payload
// retest scripts.
//
// Expected format:
//
//	Failed e2e jobs:
//	  ❌ e2e-aws-ovn
//	     Consecutive failures: 5
//	     Recent history: 8 fail / 2 pass / 0 abort
//	⏳ Currently running (2 jobs):
//	  • e2e-metal-ipi
package jobparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tinytelemetry/prci/internal/model"
)

var (
	failedPattern  = regexp.MustCompile(`❌ (.+?)\n\s+Consecutive failures: (\d+)`)
	runningSection = regexp.MustCompile(`(?s)Currently running.*?:\n(.*?)(?:\n\n|$)`)
	runningPattern = regexp.MustCompile(`• (.+?)(?:\n|$)`)
)

// Parse extracts failed and running jobs from a script report. Both report
// flavours share the same layout.
func Parse(output string) model.JobSet {
	output = strings.ReplaceAll(output, "\r\n", "\n")
	set := model.JobSet{
		Failed:  []model.JobStatus{},
		Running: []model.JobStatus{},
	}

	for _, m := range failedPattern.FindAllStringSubmatch(output, -1) {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		set.Failed = append(set.Failed, model.JobStatus{Name: strings.TrimSpace(m[1]), Consecutive: n})
	}

	if sec := runningSection.FindStringSubmatch(output); sec != nil {
		for _, m := range runningPattern.FindAllStringSubmatch(sec[1], -1) {
			set.Running = append(set.Running, model.JobStatus{Name: strings.TrimSpace(m[1])})
		}
	}

	return set
}
