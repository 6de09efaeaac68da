package watcher

import (
	"time"

	"github.com/fakeyudi/tt/internal/logentry"
	"github.com/fakeyudi/tt/internal/tracker"
)

// trackerActivities adapts a *tracker.Tracker. The registry is reloaded on
// every call so edits to the activities file are picked up while running.
type trackerActivities struct {
	t *tracker.Tracker
}

// FromTracker returns the Activities backed by t.
func FromTracker(t *tracker.Tracker) Activities {
	return &trackerActivities{t: t}
}

func (a *trackerActivities) Current() (string, bool, error) {
	cur, ok, err := a.t.Current()
	if err != nil || !ok {
		return "", false, err
	}
	return cur.Activity, true, nil
}

func (a *trackerActivities) DisplayName(id string) (string, error) {
	reg, err := a.t.Registry()
	if err != nil {
		return "", err
	}
	return reg.DisplayName(id), nil
}

func (a *trackerActivities) Canonical(title string) (string, error) {
	reg, err := a.t.Registry()
	if err != nil {
		return "", err
	}
	if act, ok := reg.Lookup(title); ok {
		return act.ID, nil
	}
	return title, nil
}

// Log appends title as seen on the workspace. Unknown titles are logged
// as overrides. A correction is written instead while start is running.
// An effective time before today's midnight is moved up to it.
func (a *trackerActivities) Log(title string, effective time.Time) error {
	now := a.t.Now()
	y, m, d := now.Date()
	if midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location()); effective.Before(midnight) {
		effective = midnight
	}
	token := title
	if known, err := a.known(title); err != nil {
		return err
	} else if !known {
		token = "+" + title
	}
	at := logentry.FromClock(effective)
	_, err := a.t.Add(tracker.AddRequest{
		Activity:       token,
		At:             &at,
		AfterStart:     true,
		ClampToCurrent: true,
	})
	return err
}

func (a *trackerActivities) known(title string) (bool, error) {
	if logentry.IsInternal(title) || logentry.IsBreak(title) || logentry.IsStart(title) {
		return true, nil
	}
	reg, err := a.t.Registry()
	if err != nil {
		return false, err
	}
	_, ok := reg.Lookup(title)
	return ok, nil
}
