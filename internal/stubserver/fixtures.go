package stubserver

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/tinytelemetry/prci/internal/jobparse"
	"github.com/tinytelemetry/prci/internal/model"
)

// Fixtures is the canned backend state served by the stub.
type Fixtures struct {
	Authenticated bool         `yaml:"authenticated"`
	AuthError     string       `yaml:"auth_error"`
	DefaultQuery  string       `yaml:"default_query"`
	SearchError   string       `yaml:"search_error"` // when set, every search fails with it
	PRs           []*FixturePR `yaml:"prs" validate:"dive"`
}

// FixturePR is one PR with its job state.
type FixturePR struct {
	model.PullRequest `yaml:",inline"`
	E2E               FixtureJobs `yaml:"e2e"`
	Payload           FixtureJobs `yaml:"payload"`
}

const notAuthenticatedText = "Not authenticated. Run: gh auth login"

// fillAuthError gives an unauthenticated stub a message to report.
func (f *Fixtures) fillAuthError() {
	if !f.Authenticated && f.AuthError == "" {
		f.AuthError = notAuthenticatedText
	}
}

// FixtureJobs describes one job class either structurally or as a raw
// retest-script report in Output.
type FixtureJobs struct {
	model.JobSet `yaml:",inline"`
	Output       string `yaml:"output"`
}

// LoadFixtures reads and validates a fixture file.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("stubserver: read fixtures: %w", err)
	}
	return ParseFixtures(data)
}

// ParseFixtures decodes fixture YAML. Raw script reports are parsed into
// job lists.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("stubserver: decode fixtures: %w", err)
	}
	if err := validator.New().Struct(&f); err != nil {
		return nil, fmt.Errorf("stubserver: invalid fixtures: %w", err)
	}
	if f.DefaultQuery == "" {
		f.DefaultQuery = model.DefaultQuery
	}
	f.fillAuthError()

	var g errgroup.Group
	g.SetLimit(4)
	for _, pr := range f.PRs {
		for _, jobs := range []*FixtureJobs{&pr.E2E, &pr.Payload} {
			if jobs.Output == "" {
				continue
			}
			g.Go(func() error {
				parsed := jobparse.Parse(jobs.Output)
				jobs.Failed = append(jobs.Failed, parsed.Failed...)
				jobs.Running = append(jobs.Running, parsed.Running...)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (p *FixturePR) jobs(class model.JobClass) *FixtureJobs {
	if class == model.JobClassPayload {
		return &p.Payload
	}
	return &p.E2E
}
