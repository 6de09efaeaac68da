// Package logentry parses and writes the lines of a tt day log.
//
// A day log is plain text, one line per entry:
//
//	09:00 start
//	09:15 really JIRA-1
//	10:30 10_20 +JIRA-7 =fix review
//	12:00 break
//	# a comment
package logentry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode"
)

// Reserved activities.
const (
	Break = "break"
	Start = "start"
)

const reallyKeyword = "really"

var (
	// ErrMalformedLine is returned for text that is not a comment and does
	// not follow the entry grammar.
	ErrMalformedLine = errors.New("malformed line")
	// ErrOutOfOrder is returned when a line's time is earlier than a
	// preceding line's.
	ErrOutOfOrder = errors.New("entry out of order")
)

// Kind distinguishes the line forms.
type Kind int

const (
	KindComment Kind = iota
	KindEntry
	KindCorrection     // HH:MM really <activity> [tags...]
	KindTimeCorrection // HH:MM really HH_MM
)

func (k Kind) String() string {
	switch k {
	case KindComment:
		return "comment"
	case KindEntry:
		return "entry"
	case KindCorrection:
		return "correction"
	case KindTimeCorrection:
		return "time correction"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Line is one parsed line of a day log.
type Line struct {
	Kind    Kind
	LogTime Time
	// Effective is when the activity actually started. Only meaningful
	// when HasEffective is set; a time correction always sets it.
	Effective    Time
	HasEffective bool
	Activity     string // without a leading '+'
	Override     bool   // written as +activity
	Tags         []string
	Text         string // raw text of a comment line
}

// NewEntry returns a plain entry line.
func NewEntry(logTime Time, activity string, tags ...string) Line {
	return Line{Kind: KindEntry, LogTime: logTime, Activity: activity, Tags: tags}
}

// Start is the time the line's activity began.
func (l Line) Start() Time {
	if l.HasEffective {
		return l.Effective
	}
	return l.LogTime
}

// IsComment reports whether the line carries no entry.
func (l Line) IsComment() bool { return l.Kind == KindComment }

// IsInternal reports whether id names an internal activity.
func IsInternal(id string) bool { return strings.HasPrefix(id, "_") }

// IsBreak reports whether id is the reserved break activity.
func IsBreak(id string) bool { return id == Break }

// IsStart reports whether id is the reserved start placeholder.
func IsStart(id string) bool { return id == Start }

// Parse parses a single line of text.
func Parse(text string) (Line, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return Line{Kind: KindComment, Text: text}, nil
	}

	fields := strings.Fields(trimmed)
	logTime, err := ParseTime(fields[0])
	if err != nil {
		return Line{}, fmt.Errorf("%w: leading token %q is not HH:MM", ErrMalformedLine, fields[0])
	}
	rest := fields[1:]
	if len(rest) > 0 && strings.HasPrefix(rest[0], "#") {
		return Line{Kind: KindComment, Text: text}, nil
	}

	l := Line{Kind: KindEntry, LogTime: logTime}

	if len(rest) > 0 && rest[0] == reallyKeyword {
		rest = rest[1:]
		if len(rest) == 0 {
			return Line{}, fmt.Errorf("%w: really without activity", ErrMalformedLine)
		}
		if eff, err := ParseEffective(rest[0]); err == nil {
			if len(rest) > 1 {
				return Line{}, fmt.Errorf("%w: unexpected text after time correction", ErrMalformedLine)
			}
			l.Kind = KindTimeCorrection
			l.Effective = eff
			l.HasEffective = true
			return l, nil
		}
		l.Kind = KindCorrection
	} else if len(rest) > 0 {
		if eff, err := ParseEffective(rest[0]); err == nil {
			l.Effective = eff
			l.HasEffective = true
			rest = rest[1:]
		}
	}

	if len(rest) == 0 {
		return Line{}, fmt.Errorf("%w: missing activity", ErrMalformedLine)
	}
	activity := rest[0]
	if strings.HasPrefix(activity, "+") {
		activity = activity[1:]
		l.Override = true
	}
	if activity == "" {
		return Line{}, fmt.Errorf("%w: empty activity", ErrMalformedLine)
	}
	l.Activity = activity
	if len(rest) > 1 {
		l.Tags = append([]string(nil), rest[1:]...)
	}
	return l, nil
}

// Check returns ErrMalformedLine when the line would not read back as
// written: an activity or tag that is empty or holds whitespace, or a
// token the parser takes for a keyword, a time or a comment.
func (l Line) Check() error {
	if l.Kind == KindComment {
		return nil
	}
	if l.Kind != KindTimeCorrection {
		if err := checkToken("activity", l.Activity); err != nil {
			return err
		}
		for _, t := range l.Tags {
			if err := checkToken("tag", t); err != nil {
				return err
			}
		}
	}
	back, err := Parse(l.String())
	if err != nil {
		return err
	}
	if !back.Equal(l) {
		return fmt.Errorf("%w: %q would not read back as written", ErrMalformedLine, l.String())
	}
	return nil
}

func checkToken(what, s string) error {
	if s == "" {
		return fmt.Errorf("%w: empty %s", ErrMalformedLine, what)
	}
	if strings.ContainsFunc(s, unicode.IsSpace) {
		return fmt.Errorf("%w: %s %q must be a single word", ErrMalformedLine, what, s)
	}
	return nil
}

// Equal compares two lines by content. Nil and empty tag lists are equal.
func (l Line) Equal(o Line) bool {
	if l.Kind == KindComment || o.Kind == KindComment {
		return l.Kind == o.Kind && l.Text == o.Text
	}
	return l.Kind == o.Kind &&
		l.LogTime == o.LogTime &&
		l.HasEffective == o.HasEffective &&
		(!l.HasEffective || l.Effective == o.Effective) &&
		l.Activity == o.Activity &&
		l.Override == o.Override &&
		slices.Equal(l.Tags, o.Tags)
}

// String serializes the line. It is the inverse of Parse for lines
// whose tokens are separated by single spaces.
func (l Line) String() string {
	if l.Kind == KindComment {
		return l.Text
	}

	parts := []string{l.LogTime.String()}
	switch l.Kind {
	case KindTimeCorrection:
		return strings.Join(append(parts, reallyKeyword, l.Effective.Effective()), " ")
	case KindCorrection:
		parts = append(parts, reallyKeyword)
	default:
		if l.HasEffective {
			parts = append(parts, l.Effective.Effective())
		}
	}
	activity := l.Activity
	if l.Override {
		activity = "+" + activity
	}
	parts = append(parts, activity)
	parts = append(parts, l.Tags...)
	return strings.Join(parts, " ")
}

// ParseError locates a parse or validation failure inside a day log.
type ParseError struct {
	LineNo int
	Text   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.LineNo, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseAll parses and validates a whole day log. Comment lines are kept so
// the result can be written back unchanged.
func ParseAll(r io.Reader) ([]Line, error) {
	var lines []Line
	scanner := bufio.NewScanner(r)
	no := 0
	for scanner.Scan() {
		no++
		text := scanner.Text()
		l, err := Parse(text)
		if err != nil {
			return nil, &ParseError{LineNo: no, Text: text, Err: err}
		}
		lines = append(lines, l)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := Validate(lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// Validate checks that log times never decrease in file order. Lines are
// numbered from 1 by their slice position.
func Validate(lines []Line) error {
	last := Time(-1)
	for i, l := range lines {
		if l.IsComment() {
			continue
		}
		if l.LogTime < last {
			return &ParseError{
				LineNo: i + 1,
				Text:   l.String(),
				Err:    fmt.Errorf("%w: %s is earlier than %s", ErrOutOfOrder, l.LogTime, last),
			}
		}
		last = l.LogTime
	}
	return nil
}

// Format writes lines one per row.
func Format(w io.Writer, lines []Line) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l.String()); err != nil {
			return err
		}
	}
	return nil
}
