// Package tracker ties the log store, the registry and the timeline
// together. Every command that writes an entry goes through it.
package tracker

import (
	"errors"
	"fmt"
	"time"

	"github.com/fakeyudi/tt/internal/config"
	"github.com/fakeyudi/tt/internal/logentry"
	"github.com/fakeyudi/tt/internal/registry"
	"github.com/fakeyudi/tt/internal/report"
	"github.com/fakeyudi/tt/internal/store"
	"github.com/fakeyudi/tt/internal/timeline"
)

var (
	// ErrNothingToResume is returned when the resume stack has no frame n.
	ErrNothingToResume = errors.New("nothing to resume")
	// ErrNoActivity is returned for an add without an activity.
	ErrNoActivity = errors.New("no activity given")
	// ErrReallyWithTime is returned when a correction names both an
	// activity and a time.
	ErrReallyWithTime = errors.New("really either needs an activity or a time, not both")
)

// Tracker is the application service behind the CLI and the watcher.
type Tracker struct {
	store store.Store
	cfg   config.Config
	now   func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New returns a Tracker over s.
func New(s store.Store, cfg config.Config, opts ...Option) *Tracker {
	t := &Tracker{store: s, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Store returns the underlying store.
func (t *Tracker) Store() store.Store { return t.store }

// Now returns the tracker's current time.
func (t *Tracker) Now() time.Time { return t.now() }

// Registry loads the activities file.
func (t *Tracker) Registry() (*registry.Registry, error) {
	return t.store.ReadActivities(t.cfg.Prefix)
}

// Day reads and reconstructs the log of date. Today's timeline is closed
// at the current time.
func (t *Tracker) Day(date time.Time, reg *registry.Registry) ([]logentry.Line, *timeline.Timeline, error) {
	lines, err := t.store.ReadDay(date)
	if err != nil {
		return nil, nil, err
	}
	tl, err := timeline.Build(lines, reg)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", t.store.DayPath(date), err)
	}
	now := t.now()
	if report.SameDay(date, now) {
		tl.CloseAt(logentry.FromClock(now))
	}
	return lines, tl, nil
}

// Current returns today's last interval.
func (t *Tracker) Current() (timeline.Interval, bool, error) {
	reg, err := t.Registry()
	if err != nil {
		return timeline.Interval{}, false, err
	}
	_, tl, err := t.Day(t.now(), reg)
	if err != nil {
		return timeline.Interval{}, false, err
	}
	cur, ok := tl.Current()
	return cur, ok, nil
}

// IsActive reports whether an activity other than break is running today.
func (t *Tracker) IsActive() (bool, error) {
	reg, err := t.Registry()
	if err != nil {
		return false, err
	}
	_, tl, err := t.Day(t.now(), reg)
	if err != nil {
		return false, err
	}
	return tl.Active(), nil
}

// AddRequest describes one entry to log.
type AddRequest struct {
	Activity string // as typed: shortname, id, number, +override, _internal
	Tags     []string
	// Really corrects the running interval instead of starting a new one.
	// Without an activity it moves the running interval's start to At.
	Really bool
	// At sets the effective start time. Ago is an alternative relative to now.
	At  *logentry.Time
	Ago time.Duration
	// AfterStart turns the entry into a correction when the running
	// activity is the start placeholder. Used by interactive callers.
	AfterStart bool
	// ClampToCurrent moves an effective time that lies before the running
	// interval's start up to that start.
	ClampToCurrent bool
}

// Add validates and appends one entry to today's log. Nothing is written
// when any check fails.
func (t *Tracker) Add(req AddRequest) (logentry.Line, error) {
	now := t.now()
	nowT := logentry.FromClock(now)

	reg, err := t.Registry()
	if err != nil {
		return logentry.Line{}, err
	}
	lines, tl, err := t.Day(now, reg)
	if err != nil {
		return logentry.Line{}, err
	}

	effective, hasEffective := nowT, false
	switch {
	case req.At != nil:
		effective, hasEffective = *req.At, true
	case req.Ago > 0:
		effective, hasEffective = nowT.Add(-req.Ago), true
	}

	if req.Really && req.Activity == "" {
		if !hasEffective {
			return logentry.Line{}, fmt.Errorf("really needs an activity or a time")
		}
		l := logentry.Line{Kind: logentry.KindTimeCorrection, LogTime: nowT, Effective: effective, HasEffective: true}
		return l, t.commit(now, lines, l, reg)
	}
	if req.Activity == "" {
		return logentry.Line{}, ErrNoActivity
	}
	if req.Really && hasEffective {
		return logentry.Line{}, ErrReallyWithTime
	}

	res, err := reg.Resolve(req.Activity)
	if err != nil {
		return logentry.Line{}, err
	}

	cur, running := tl.Current()
	if req.ClampToCurrent && hasEffective && running && effective < cur.Start {
		effective = cur.Start
	}

	l := logentry.Line{
		Kind:     logentry.KindEntry,
		LogTime:  nowT,
		Activity: res.ID,
		Override: res.Override,
		Tags:     req.Tags,
	}
	if req.Really || (req.AfterStart && running && logentry.IsStart(cur.Activity)) {
		l.Kind = logentry.KindCorrection
	} else if hasEffective && effective != nowT {
		l.Effective, l.HasEffective = effective, true
	}

	if err := t.commit(now, lines, l, reg); err != nil {
		return logentry.Line{}, err
	}
	if res.Override {
		if err := t.register(reg, res.ID, req.Tags); err != nil {
			return l, err
		}
	}
	return l, nil
}

// Resume appends an entry for frame n (1-based) of today's resume stack.
func (t *Tracker) Resume(n int) (logentry.Line, error) {
	now := t.now()
	reg, err := t.Registry()
	if err != nil {
		return logentry.Line{}, err
	}
	lines, tl, err := t.Day(now, reg)
	if err != nil {
		return logentry.Line{}, err
	}
	l, ok := tl.ResumeEntry(n, logentry.FromClock(now))
	if !ok {
		return logentry.Line{}, fmt.Errorf("%w: stack has %d entries", ErrNothingToResume, len(tl.ResumeStack()))
	}
	return l, t.commit(now, lines, l, reg)
}

// ResumeStack returns today's resume stack.
func (t *Tracker) ResumeStack() ([]timeline.Frame, error) {
	reg, err := t.Registry()
	if err != nil {
		return nil, err
	}
	_, tl, err := t.Day(t.now(), reg)
	if err != nil {
		return nil, err
	}
	return tl.ResumeStack(), nil
}

// commit checks that the day stays valid with l appended, then appends.
func (t *Tracker) commit(now time.Time, lines []logentry.Line, l logentry.Line, reg *registry.Registry) error {
	if err := l.Check(); err != nil {
		return err
	}
	next := append(append([]logentry.Line(nil), lines...), l)
	if err := logentry.Validate(next); err != nil {
		return err
	}
	if _, err := timeline.Build(next, reg); err != nil {
		return err
	}
	return t.store.Append(now, l)
}

// register records an override's "=shortname" tag in the activities file.
func (t *Tracker) register(reg *registry.Registry, id string, tags []string) error {
	short, ok := registry.ShortnameTag(tags)
	if !ok {
		return nil
	}
	_, existed := reg.Lookup(id)
	if existing, ok := reg.Lookup(short); ok && existing.ID != id {
		existed = true
	}
	if !reg.Add(id, short) {
		return nil
	}
	if existed {
		return t.store.SaveActivities(reg)
	}
	return t.store.AppendActivity(registry.Activity{ID: id, Shortname: short})
}

// Report loads every day of w and aggregates it. Activities with less
// than cutoff on a day are distributed over that day's other activities.
func (t *Tracker) Report(w report.Window, cutoff time.Duration) (*report.Report, error) {
	reg, err := t.Registry()
	if err != nil {
		return nil, err
	}
	now := t.now()
	var days []report.DaySummary
	var current *timeline.Interval
	for _, date := range w.Dates() {
		_, tl, err := t.Day(date, reg)
		if err != nil {
			return nil, err
		}
		days = append(days, report.Summarize(date, tl, cutoff))
		if report.SameDay(date, now) {
			if cur, ok := tl.Current(); ok {
				current = &cur
			}
		}
	}
	return report.New(w, days, current, reg), nil
}
