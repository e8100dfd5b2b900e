// Package retest tracks in-flight retests and decides when their polling stops.
package retest

import (
	"sort"
	"time"

	"github.com/tinytelemetry/prci/internal/model"
)

// PRKey identifies a pull request.
type PRKey struct {
	Owner  string
	Repo   string
	Number int
}

// Job returns the key of one job on this PR.
func (p PRKey) Job(name string) Key {
	return Key{Owner: p.Owner, Repo: p.Repo, Number: p.Number, Job: name}
}

// PRKeyOf returns the key of pr.
func PRKeyOf(pr model.PullRequest) PRKey {
	return PRKey{Owner: pr.Owner, Repo: pr.Repo, Number: pr.Number}
}

// Key identifies one job on one PR. Job names may contain slashes.
type Key struct {
	Owner  string
	Repo   string
	Number int
	Job    string
}

// PR returns the PR part of the key.
func (k Key) PR() PRKey {
	return PRKey{Owner: k.Owner, Repo: k.Repo, Number: k.Number}
}

// Handle identifies one scheduled poll loop. A handle outlives its entry:
// once the entry is removed, polls carrying the handle are stale.
type Handle struct {
	Key Key
	gen uint64
}

// PollResult tells the caller what to do with a poll tick.
type PollResult int

const (
	PollStale   PollResult = iota // entry gone or replaced; drop the tick
	PollExpired                   // timeout elapsed; entry removed
	PollRefresh                   // refresh the PR and schedule the next tick
)

func (r PollResult) String() string {
	switch r {
	case PollExpired:
		return "expired"
	case PollRefresh:
		return "refresh"
	default:
		return "stale"
	}
}

// Config holds tracker timing.
type Config struct {
	Interval time.Duration    // delay between polls
	Timeout  time.Duration    // polling stops once this much time has elapsed
	Now      func() time.Time // clock, time.Now when nil
}

type entry struct {
	started time.Time
	gen     uint64
}

// Tracker maps in-flight retests to their poll loops. An entry exists iff a
// poll loop is scheduled for it. Tracker is not safe for concurrent use; it
// lives on the UI update loop.
type Tracker struct {
	entries  map[Key]entry
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
	nextGen  uint64
}

// NewTracker creates an empty tracker. Zero durations fall back to the defaults.
func NewTracker(cfg Config) *Tracker {
	if cfg.Interval <= 0 {
		cfg.Interval = model.DefaultPollInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = model.DefaultPollTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Tracker{
		entries:  make(map[Key]entry),
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		now:      cfg.Now,
	}
}

// Interval returns the delay between polls.
func (t *Tracker) Interval() time.Duration { return t.interval }

// Mark starts tracking the given jobs. Jobs already tracked keep their
// existing loop; only newly tracked jobs get a handle to schedule.
func (t *Tracker) Mark(pr PRKey, jobs []string) []Handle {
	var handles []Handle
	for _, name := range jobs {
		key := pr.Job(name)
		if _, ok := t.entries[key]; ok {
			continue
		}
		t.nextGen++
		t.entries[key] = entry{started: t.now(), gen: t.nextGen}
		handles = append(handles, Handle{Key: key, gen: t.nextGen})
	}
	return handles
}

// IsRetesting reports whether key is tracked.
func (t *Tracker) IsRetesting(key Key) bool {
	_, ok := t.entries[key]
	return ok
}

// Resolve stops tracking key. It reports whether key was tracked.
func (t *Tracker) Resolve(key Key) bool {
	if _, ok := t.entries[key]; !ok {
		return false
	}
	delete(t.entries, key)
	return true
}

// Poll handles a tick of the loop identified by h.
func (t *Tracker) Poll(h Handle) PollResult {
	e, ok := t.entries[h.Key]
	if !ok || e.gen != h.gen {
		return PollStale
	}
	if t.now().Sub(e.started) >= t.timeout {
		delete(t.entries, h.Key)
		return PollExpired
	}
	return PollRefresh
}

// Len returns the number of tracked jobs.
func (t *Tracker) Len() int { return len(t.entries) }

// Keys returns the tracked keys in a stable order.
func (t *Tracker) Keys() []Key {
	keys := make([]Key, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Owner != b.Owner {
			return a.Owner < b.Owner
		}
		if a.Repo != b.Repo {
			return a.Repo < b.Repo
		}
		if a.Number != b.Number {
			return a.Number < b.Number
		}
		return a.Job < b.Job
	})
	return keys
}
