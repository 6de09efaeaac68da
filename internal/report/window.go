package report

import (
	"fmt"
	"time"

	"github.com/fakeyudi/tt/internal/timeline"
)

// Window is an inclusive range of calendar days.
type Window struct {
	From time.Time
	To   time.Time
}

// DayWindow covers date alone.
func DayWindow(date time.Time) Window {
	d := truncate(date)
	return Window{From: d, To: d}
}

// WeekWindow covers the Monday of date's week up to date.
func WeekWindow(date time.Time) Window {
	d := truncate(date)
	return Window{From: StartOfWeek(d), To: d}
}

// StartOfWeek returns the Monday on or before date.
func StartOfWeek(date time.Time) time.Time {
	d := truncate(date)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// Dates lists every day of the window in order.
func (w Window) Dates() []time.Time {
	var out []time.Time
	for d := w.From; !d.After(w.To); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// Single reports whether the window is one day.
func (w Window) Single() bool { return w.From.Equal(w.To) }

func (w Window) String() string {
	if w.Single() {
		return w.From.Format(dateLayout)
	}
	return w.From.Format(dateLayout) + " - " + w.To.Format(dateLayout)
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ya, ma, da := a.Date()
	yb, mb, db := b.Date()
	return ya == yb && ma == mb && da == db
}

const dateLayout = "2006-01-02"

// Namer gives the display name of an activity id.
// *registry.Registry implements it.
type Namer interface {
	DisplayName(id string) string
}

// Report is everything a renderer needs.
type Report struct {
	Window Window
	Days   []DaySummary
	Totals map[string]time.Duration
	// Current is today's running interval, nil when the window does not
	// include today or nothing was logged.
	Current *timeline.Interval
	Names   Namer
}

// New aggregates the days of a window.
func New(w Window, days []DaySummary, current *timeline.Interval, names Namer) *Report {
	return &Report{
		Window:  w,
		Days:    days,
		Totals:  Aggregate(days),
		Current: current,
		Names:   names,
	}
}

// Work sums the non-break time of all days.
func (r *Report) Work() time.Duration {
	var total time.Duration
	for _, d := range r.Days {
		total += d.Work
	}
	return total
}

// Break sums the break time of all days.
func (r *Report) Break() time.Duration {
	var total time.Duration
	for _, d := range r.Days {
		total += d.Break
	}
	return total
}

func (r *Report) displayName(id string) string {
	if r.Names == nil {
		return id
	}
	return r.Names.DisplayName(id)
}

// label is "id (shortname)" when a shortname exists.
func (r *Report) label(id string) string {
	if name := r.displayName(id); name != id {
		return id + " (" + name + ")"
	}
	return id
}

// FormatDuration renders d rounded to the minute as H:MM.
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	m := int(d.Round(time.Minute) / time.Minute)
	return fmt.Sprintf("%s%d:%02d", sign, m/60, m%60)
}
