// Package timeline reconstructs the intervals of a day from its log lines.
package timeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/fakeyudi/tt/internal/logentry"
)

// ErrCorrectionWithoutTarget is returned for a "really" line that has no
// earlier entry on the same day to correct.
var ErrCorrectionWithoutTarget = errors.New("correction without a preceding entry")

// Resolver maps an activity reference from the log to a canonical id.
// *registry.Registry implements it.
type Resolver interface {
	Canonical(token string) (string, error)
}

// Interval is one stretch of a single activity.
type Interval struct {
	Activity string
	Tags     []string
	Start    logentry.Time
	End      logentry.Time
	Open     bool // last interval of the day, still running
}

// Duration is End-Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Timeline is the ordered, gapless interval sequence of one day.
type Timeline struct {
	Intervals []Interval
}

// Build folds the lines of a day into intervals. Each entry closes the
// open interval at its start time. A nil resolver keeps references as
// written. The last interval is open and ends at its own start until
// CloseAt is called.
func Build(lines []logentry.Line, res Resolver) (*Timeline, error) {
	tl := &Timeline{}
	for i, l := range lines {
		if err := tl.apply(l, res); err != nil {
			return nil, &logentry.ParseError{LineNo: i + 1, Text: l.String(), Err: err}
		}
	}
	return tl, nil
}

func (tl *Timeline) apply(l logentry.Line, res Resolver) error {
	n := len(tl.Intervals)
	switch l.Kind {
	case logentry.KindComment:
		return nil

	case logentry.KindTimeCorrection:
		if n == 0 {
			return ErrCorrectionWithoutTarget
		}
		if n > 1 && l.Effective < tl.Intervals[n-2].Start {
			return fmt.Errorf("%w: %s is before the previous activity started", logentry.ErrOutOfOrder, l.Effective)
		}
		cur := &tl.Intervals[n-1]
		cur.Start = l.Effective
		if cur.End < cur.Start {
			cur.End = cur.Start
		}
		if n > 1 {
			tl.Intervals[n-2].End = l.Effective
		}
		return nil

	case logentry.KindCorrection:
		if n == 0 {
			return ErrCorrectionWithoutTarget
		}
		id, err := canonical(res, l)
		if err != nil {
			return err
		}
		cur := &tl.Intervals[n-1]
		cur.Activity = id
		cur.Tags = l.Tags
		return nil
	}

	id, err := canonical(res, l)
	if err != nil {
		return err
	}
	start := l.Start()
	if n > 0 {
		prev := &tl.Intervals[n-1]
		if start < prev.Start {
			return fmt.Errorf("%w: %s is before %s started at %s", logentry.ErrOutOfOrder, start, prev.Activity, prev.Start)
		}
		prev.End = start
		prev.Open = false
	}
	tl.Intervals = append(tl.Intervals, Interval{
		Activity: id,
		Tags:     l.Tags,
		Start:    start,
		End:      start,
		Open:     true,
	})
	return nil
}

// canonical keeps overrides as written.
func canonical(res Resolver, l logentry.Line) (string, error) {
	if res == nil || l.Override {
		return l.Activity, nil
	}
	return res.Canonical(l.Activity)
}

// CloseAt extends the open interval to t. Used for the current day.
func (tl *Timeline) CloseAt(t logentry.Time) {
	if n := len(tl.Intervals); n > 0 && tl.Intervals[n-1].End < t {
		tl.Intervals[n-1].End = t
	}
}

// Current returns the last interval, if any.
func (tl *Timeline) Current() (Interval, bool) {
	if len(tl.Intervals) == 0 {
		return Interval{}, false
	}
	return tl.Intervals[len(tl.Intervals)-1], true
}

// Active reports whether something other than a break is running.
func (tl *Timeline) Active() bool {
	cur, ok := tl.Current()
	return ok && cur.Open && !logentry.IsBreak(cur.Activity)
}

// Start is when the first interval began.
func (tl *Timeline) Start() (logentry.Time, bool) {
	if len(tl.Intervals) == 0 {
		return 0, false
	}
	return tl.Intervals[0].Start, true
}
