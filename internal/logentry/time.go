package logentry

import (
	"fmt"
	"time"
)

// Time is a local wall-clock time of day with minute resolution,
// stored as minutes since midnight.
type Time int

// MaxTime is the last representable minute of a day.
const MaxTime Time = 23*60 + 59

// NewTime builds a Time from an hour and a minute. It does not validate.
func NewTime(hour, minute int) Time {
	return Time(hour*60 + minute)
}

// FromClock truncates t to its local hour and minute.
func FromClock(t time.Time) Time {
	return NewTime(t.Hour(), t.Minute())
}

// ParseTime parses the log form "HH:MM".
func ParseTime(s string) (Time, error) {
	return parseClock(s, ':')
}

// ParseEffective parses the single-token effective-time form "HH_MM".
func ParseEffective(s string) (Time, error) {
	return parseClock(s, '_')
}

func parseClock(s string, sep byte) (Time, error) {
	if len(s) != 5 || s[2] != sep {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, ok1 := twoDigits(s[0:2])
	m, ok2 := twoDigits(s[3:5])
	if !ok1 || !ok2 || h > 23 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return NewTime(h, m), nil
}

func twoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

func (t Time) Hour() int   { return int(t) / 60 }
func (t Time) Minute() int { return int(t) % 60 }

// String renders the log form "HH:MM".
func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Effective renders the single-token form "HH_MM".
func (t Time) Effective() string {
	return fmt.Sprintf("%02d_%02d", t.Hour(), t.Minute())
}

// Sub returns the duration t-u.
func (t Time) Sub(u Time) time.Duration {
	return time.Duration(int(t)-int(u)) * time.Minute
}

// Add shifts t by d, truncated to whole minutes and clamped to the day.
func (t Time) Add(d time.Duration) Time {
	r := t + Time(d/time.Minute)
	if r < 0 {
		return 0
	}
	if r > MaxTime {
		return MaxTime
	}
	return r
}

// On places t on the calendar day of date in date's location.
func (t Time) On(date time.Time) time.Time {
	y, mo, d := date.Date()
	return time.Date(y, mo, d, t.Hour(), t.Minute(), 0, 0, date.Location())
}
