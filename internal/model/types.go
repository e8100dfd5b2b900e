package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// PullRequest is one search hit. It is identified by (Owner, Repo, Number)
// and never changes once rendered.
type PullRequest struct {
	Owner     string    `json:"owner" yaml:"owner" validate:"required"`
	Repo      string    `json:"repo" yaml:"repo" validate:"required"`
	Number    int       `json:"number" yaml:"number" validate:"gt=0"`
	Title     string    `json:"title" yaml:"title"`
	Author    string    `json:"author" yaml:"author"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	State     string    `json:"state,omitempty" yaml:"state,omitempty"` // "OPEN", "MERGED", "CLOSED"
}

// JobStatus is a single CI job as reported by the backend.
type JobStatus struct {
	Name        string `json:"name" yaml:"name" validate:"required"`
	Consecutive int    `json:"consecutive" yaml:"consecutive"` // consecutive failures
}

// UnmarshalJSON accepts both {"name": ..., "consecutive": ...} and a bare
// job name. The backend reports running jobs as plain strings.
func (j *JobStatus) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*j = JobStatus{Name: name}
		return nil
	}
	type plain JobStatus
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("job status: %w", err)
	}
	*j = JobStatus(p)
	return nil
}

// UnmarshalYAML accepts a mapping or a bare job name, mirroring UnmarshalJSON.
func (j *JobStatus) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*j = JobStatus{Name: node.Value}
		return nil
	}
	type plain JobStatus
	var p plain
	if err := node.Decode(&p); err != nil {
		return fmt.Errorf("job status: %w", err)
	}
	*j = JobStatus(p)
	return nil
}

// JobClass distinguishes the two job families tracked per PR.
type JobClass string

const (
	JobClassE2E     JobClass = "e2e"
	JobClassPayload JobClass = "payload"
)

// JobClasses lists the classes in display order.
var JobClasses = []JobClass{JobClassE2E, JobClassPayload}

// DisplayName is the label used in section headers and buttons.
func (c JobClass) DisplayName() string {
	switch c {
	case JobClassE2E:
		return "E2E"
	case JobClassPayload:
		return "Payload"
	default:
		return string(c)
	}
}

// Valid reports whether c is a known job class.
func (c JobClass) Valid() bool {
	return c == JobClassE2E || c == JobClassPayload
}

// JobSet groups the failed and running jobs of one class.
type JobSet struct {
	Failed  []JobStatus `json:"failed" yaml:"failed"`
	Running []JobStatus `json:"running" yaml:"running"`
	Error   string      `json:"error,omitempty" yaml:"error,omitempty"` // backend script failure
}

// HasRunning reports whether a job with the given name is in the running list.
func (s JobSet) HasRunning(name string) bool {
	for _, r := range s.Running {
		if r.Name == name {
			return true
		}
	}
	return false
}

// PRJobs is the job detail of a single PR. It is replaced wholesale on every fetch.
type PRJobs struct {
	E2E     JobSet `json:"e2e" yaml:"e2e"`
	Payload JobSet `json:"payload" yaml:"payload"`
}

// Set returns the job set for the given class.
func (p PRJobs) Set(class JobClass) JobSet {
	if class == JobClassPayload {
		return p.Payload
	}
	return p.E2E
}

// SearchResult is the backend's answer to a PR search.
type SearchResult struct {
	PRs   []PullRequest `json:"prs"`
	Total int           `json:"total"`
}

// AuthStatus reports whether the backend holds a working credential.
type AuthStatus struct {
	Authenticated bool   `json:"authenticated"`
	Error         string `json:"error,omitempty"`
}

// RetestRequest asks the backend to re-run jobs of one class on one PR.
type RetestRequest struct {
	Owner string   `json:"owner" validate:"required"`
	Repo  string   `json:"repo" validate:"required"`
	PR    int      `json:"pr" validate:"gt=0"`
	Jobs  []string `json:"jobs" validate:"min=1,dive,required"`
	Type  JobClass `json:"type" validate:"oneof=e2e payload"`
}
