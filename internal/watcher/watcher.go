// Package watcher polls the window manager and ties workspaces to the
// running activity: a workspace focused long enough is either labelled
// with the current activity or, when it already has a label, switches the
// log to the activity that label names.
package watcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/fakeyudi/tt/internal/config"
	"github.com/fakeyudi/tt/internal/i3"
	"github.com/fakeyudi/tt/internal/logentry"
)

// WindowManager is the workspace side of the watcher. *i3.Client
// implements it.
type WindowManager interface {
	Workspaces(ctx context.Context) ([]i3.Workspace, error)
	SetTitle(ctx context.Context, ws i3.Workspace, title string) error
}

// Activities is the log side of the watcher.
type Activities interface {
	// Current returns the id of today's running activity. ok is false
	// when nothing has been logged today.
	Current() (id string, ok bool, err error)
	// DisplayName returns the label to put on a workspace for id.
	DisplayName(id string) (string, error)
	// Canonical returns the activity id a workspace title stands for.
	Canonical(title string) (string, error)
	// Log appends an entry for the activity named by title.
	Log(title string, effective time.Time) error
}

// Clock abstracts time for the polling loop.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Action is what a tick did.
type Action int

const (
	ActionNone  Action = iota
	ActionLabel        // untitled workspace renamed after the activity
	ActionLog          // titled workspace's activity appended to the log
)

func (a Action) String() string {
	switch a {
	case ActionLabel:
		return "label"
	case ActionLog:
		return "log"
	}
	return "none"
}

// FocusState accumulates how long each workspace has been focused since
// the last reset, per output.
type FocusState struct {
	Durations    map[string]map[int64]time.Duration
	LastActivity string
	ResetAt      time.Time
}

// NewFocusState returns an empty state reset at now.
func NewFocusState(now time.Time) *FocusState {
	s := &FocusState{}
	s.Reset(now)
	return s
}

// Reset clears every accumulated duration.
func (s *FocusState) Reset(now time.Time) {
	s.Durations = make(map[string]map[int64]time.Duration)
	s.ResetAt = now
}

// Add credits d to workspace id on output and returns its new total.
func (s *FocusState) Add(output string, id int64, d time.Duration) time.Duration {
	if s.Durations[output] == nil {
		s.Durations[output] = make(map[int64]time.Duration)
	}
	s.Durations[output][id] += d
	return s.Durations[output][id]
}

// Watcher is the workspace focus state machine.
type Watcher struct {
	wm          WindowManager
	acts        Activities
	clock       Clock
	log         *slog.Logger
	granularity time.Duration
	timebox     time.Duration
	state       *FocusState
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option { return func(w *Watcher) { w.clock = c } }

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option { return func(w *Watcher) { w.log = l } }

// New returns a Watcher polling every cfg.Granularity.
func New(wm WindowManager, acts Activities, cfg config.WatchI3, opts ...Option) *Watcher {
	w := &Watcher{
		wm:          wm,
		acts:        acts,
		clock:       realClock{},
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		granularity: cfg.Granularity(),
		timebox:     cfg.Timebox(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.state = NewFocusState(w.clock.Now())
	return w
}

// State exposes the focus state.
func (w *Watcher) State() *FocusState { return w.state }

// Tick runs one step of the state machine.
func (w *Watcher) Tick(ctx context.Context) (Action, error) {
	now := w.clock.Now()

	current, logged, err := w.acts.Current()
	if err != nil {
		return ActionNone, fmt.Errorf("reading current activity: %w", err)
	}
	if !logged {
		current = ""
	}
	if current != w.state.LastActivity {
		w.state.Reset(now)
		w.state.LastActivity = current
	}

	workspaces, err := w.wm.Workspaces(ctx)
	if err != nil {
		return ActionNone, err
	}
	focused, ok := i3.Focused(workspaces)
	if !ok {
		return ActionNone, nil
	}
	if w.state.Add(focused.Output, focused.ID, w.granularity) < w.timebox {
		return ActionNone, nil
	}

	action, err := w.act(ctx, now, current, focused, workspaces)
	w.state.Reset(now)
	return action, err
}

func (w *Watcher) act(ctx context.Context, now time.Time, current string, focused i3.Workspace, workspaces []i3.Workspace) (Action, error) {
	if current == "" || logentry.IsBreak(current) {
		return ActionNone, nil
	}

	title := focused.Title()
	if title == "" {
		if logentry.IsStart(current) {
			return ActionNone, nil
		}
		name, err := w.acts.DisplayName(current)
		if err != nil {
			return ActionNone, err
		}
		for _, ws := range workspaces {
			if ws.Output == focused.Output && ws.ID != focused.ID && ws.Title() == name {
				return ActionNone, nil
			}
		}
		if err := w.wm.SetTitle(ctx, focused, name); err != nil {
			return ActionNone, err
		}
		return ActionLabel, nil
	}

	// Activities are single words; such a title can never match one.
	if strings.ContainsFunc(title, unicode.IsSpace) {
		w.log.Warn("workspace title is not an activity", "workspace", focused.Name, "title", title)
		return ActionNone, nil
	}
	id, err := w.acts.Canonical(title)
	if err != nil {
		return ActionNone, err
	}
	if id == current {
		return ActionNone, nil
	}
	if err := w.acts.Log(title, now.Add(-w.timebox)); err != nil {
		return ActionNone, err
	}
	return ActionLog, nil
}

// Run ticks every granularity until ctx is done. Tick errors are logged
// and the loop carries on.
func (w *Watcher) Run(ctx context.Context) error {
	log := w.log.With("run", uuid.NewString())
	log.Info("watching workspaces", "granularity", w.granularity, "timebox", w.timebox)

	for {
		action, err := w.Tick(ctx)
		switch {
		case err != nil:
			log.Warn("tick skipped", "error", err)
		case action != ActionNone:
			log.Info("workspace action", "action", action.String(), "activity", w.state.LastActivity)
		default:
			log.Debug("tick", "reset_at", w.state.ResetAt)
		}

		if ctx.Err() == nil {
			select {
			case <-ctx.Done():
			case <-w.clock.After(w.granularity):
				continue
			}
		}
		log.Info("watcher stopped")
		return nil
	}
}
