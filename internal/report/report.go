// Package report aggregates reconstructed days into per-activity totals
// and renders them.
package report

import (
	"sort"
	"time"

	"github.com/fakeyudi/tt/internal/logentry"
	"github.com/fakeyudi/tt/internal/timeline"
)

// DaySummary is the aggregate of one day.
type DaySummary struct {
	Date     time.Time
	Start    logentry.Time
	End      logentry.Time
	Empty    bool
	Work     time.Duration // everything except break
	Break    time.Duration
	Internal time.Duration
	// Raw holds the time of every non-break activity as logged.
	Raw map[string]time.Duration
	// Totals holds Raw after internal time has been distributed.
	Totals map[string]time.Duration
	Tags   map[string][]string
}

// Summarize aggregates one reconstructed day. The timeline should already
// be closed at "now" when date is today. Activities with less than cutoff
// are distributed like internal time; zero disables that.
func Summarize(date time.Time, tl *timeline.Timeline, cutoff time.Duration) DaySummary {
	s := DaySummary{
		Date: date,
		Raw:  make(map[string]time.Duration),
		Tags: make(map[string][]string),
	}
	if len(tl.Intervals) == 0 {
		s.Empty = true
		s.Totals = map[string]time.Duration{}
		return s
	}
	s.Start = tl.Intervals[0].Start
	s.End = tl.Intervals[len(tl.Intervals)-1].End

	seen := make(map[string]map[string]bool)
	for _, iv := range tl.Intervals {
		d := iv.Duration()
		if logentry.IsBreak(iv.Activity) {
			s.Break += d
			continue
		}
		s.Work += d
		if logentry.IsInternal(iv.Activity) {
			s.Internal += d
		}
		s.Raw[iv.Activity] += d
		for _, tag := range iv.Tags {
			if timeline.IsResumeTag(tag) {
				continue
			}
			if seen[iv.Activity] == nil {
				seen[iv.Activity] = make(map[string]bool)
			}
			if !seen[iv.Activity][tag] {
				seen[iv.Activity][tag] = true
				s.Tags[iv.Activity] = append(s.Tags[iv.Activity], tag)
			}
		}
	}
	s.Totals = Distribute(s.Raw, cutoff)
	return s
}

// Distribute spreads the time of internal activities, and of activities
// with less than cutoff, evenly over the remaining activities. Without any
// remaining activity everything stays under its own id. Remainder
// nanoseconds go to the first activities by id so the sum is preserved
// exactly.
func Distribute(raw map[string]time.Duration, cutoff time.Duration) map[string]time.Duration {
	var pool time.Duration
	var targets, small []string
	for id, d := range raw {
		switch {
		case logentry.IsBreak(id), d <= 0:
		case logentry.IsInternal(id):
			pool += d
		case d < cutoff:
			small = append(small, id)
		default:
			targets = append(targets, id)
		}
	}

	out := make(map[string]time.Duration, len(raw))
	if len(targets) == 0 {
		for id, d := range raw {
			if !logentry.IsBreak(id) && d > 0 {
				out[id] = d
			}
		}
		return out
	}
	for _, id := range small {
		pool += raw[id]
	}

	sort.Strings(targets)
	share := pool / time.Duration(len(targets))
	rest := pool % time.Duration(len(targets))
	for i, id := range targets {
		out[id] = raw[id] + share
		if time.Duration(i) < rest {
			out[id]++
		}
	}
	return out
}

// Aggregate sums the distributed totals of several days.
func Aggregate(days []DaySummary) map[string]time.Duration {
	out := make(map[string]time.Duration)
	for _, d := range days {
		for id, dur := range d.Totals {
			out[id] += dur
		}
	}
	return out
}

// Entry is one activity total.
type Entry struct {
	Activity string
	Duration time.Duration
}

// Sorted orders totals by duration, longest first, then by id.
func Sorted(totals map[string]time.Duration) []Entry {
	out := make([]Entry, 0, len(totals))
	for id, d := range totals {
		out = append(out, Entry{Activity: id, Duration: d})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Duration != out[j].Duration {
			return out[i].Duration > out[j].Duration
		}
		return out[i].Activity < out[j].Activity
	})
	return out
}
