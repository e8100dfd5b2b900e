package jobparse

import (
	"testing"
)

const e2eReport = `Checking PR openshift/ovn-kubernetes#2481...
Failed e2e jobs:
  ❌ e2e-aws-ovn
     Consecutive failures: 5
     Recent history: 8 fail / 2 pass / 0 abort
  ❌ e2e-gcp-ovn-upgrade
     Consecutive failures: 1
     Recent history: 1 fail / 9 pass / 0 abort
⏳ Currently running (2 jobs):
  • e2e-metal-ipi
  • e2e-aws-ovn-serial

What would you like to do?
`

func TestParse_E2EReport(t *testing.T) {
	t.Parallel()

	set := Parse(e2eReport)

	if len(set.Failed) != 2 {
		t.Fatalf("failed = %+v, want 2 entries", set.Failed)
	}
	if set.Failed[0].Name != "e2e-aws-ovn" || set.Failed[0].Consecutive != 5 {
		t.Errorf("failed[0] = %+v", set.Failed[0])
	}
	if set.Failed[1].Name != "e2e-gcp-ovn-upgrade" || set.Failed[1].Consecutive != 1 {
		t.Errorf("failed[1] = %+v", set.Failed[1])
	}
	if len(set.Running) != 2 || set.Running[0].Name != "e2e-metal-ipi" || set.Running[1].Name != "e2e-aws-ovn-serial" {
		t.Errorf("running = %+v", set.Running)
	}
}

func TestParse_PayloadReportAtEOF(t *testing.T) {
	t.Parallel()

	report := "Failed payload jobs:\r\n" +
		"  ❌ periodic-ci-openshift-release-4.18-e2e-aws-ovn\r\n" +
		"     Consecutive failures: 3\r\n" +
		"⏳ Currently running (1 jobs):\r\n" +
		"  • periodic-ci-openshift-release-4.18-e2e-gcp"

	set := Parse(report)
	if len(set.Failed) != 1 || set.Failed[0].Consecutive != 3 {
		t.Fatalf("failed = %+v", set.Failed)
	}
	if len(set.Running) != 1 || set.Running[0].Name != "periodic-ci-openshift-release-4.18-e2e-gcp" {
		t.Fatalf("running = %+v", set.Running)
	}
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	set := Parse("No failed jobs found.\n")
	if set.Failed == nil || set.Running == nil {
		t.Fatal("lists must be non-nil so they encode as []")
	}
	if len(set.Failed) != 0 || len(set.Running) != 0 {
		t.Fatalf("set = %+v, want empty", set)
	}
}
