// Package registry resolves activity references against the set of known
// activities and the configured numeric id prefix.
package registry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fakeyudi/tt/internal/logentry"
)

var (
	// ErrUnknownActivity is returned when a reference matches neither a
	// shortname nor a canonical id and was not written with '+'.
	ErrUnknownActivity = errors.New("unknown activity")
	// ErrNoPrefixConfigured is returned for a numeric reference when no
	// prefix is set.
	ErrNoPrefixConfigured = errors.New("numeric activity but no prefix configured")
)

// Activity is one registered activity.
type Activity struct {
	ID        string
	Shortname string
}

// Internal reports whether the activity's time is redistributed in reports.
func (a Activity) Internal() bool { return logentry.IsInternal(a.ID) }

// Registry maps shortnames and canonical ids to activities.
type Registry struct {
	prefix  string
	byID    map[string]Activity
	byShort map[string]string
}

// New returns an empty registry. prefix may be empty.
func New(prefix string) *Registry {
	return &Registry{
		prefix:  prefix,
		byID:    make(map[string]Activity),
		byShort: make(map[string]string),
	}
}

// Load reads an activities file: one "<canonical_id> [shortname]" per line.
// Blank lines and lines starting with '#' are skipped.
func Load(r io.Reader, prefix string) (*Registry, error) {
	reg := New(prefix)
	scanner := bufio.NewScanner(r)
	no := 0
	for scanner.Scan() {
		no++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) > 2 {
			return nil, fmt.Errorf("activities line %d: expected \"<id> [shortname]\", got %q", no, line)
		}
		a := Activity{ID: fields[0]}
		if len(fields) == 2 {
			a.Shortname = fields[1]
		}
		reg.Add(a.ID, a.Shortname)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return reg, nil
}

// Prefix returns the configured numeric id prefix.
func (r *Registry) Prefix() string { return r.prefix }

// Add registers id with an optional shortname, overwriting any previous
// shortname of id and any previous owner of shortname. It reports whether
// the registry changed.
func (r *Registry) Add(id, shortname string) bool {
	if old, ok := r.byID[id]; ok {
		if old.Shortname == shortname {
			return false
		}
		if old.Shortname != "" && r.byShort[old.Shortname] == id {
			delete(r.byShort, old.Shortname)
		}
	}
	if shortname != "" {
		if prev, ok := r.byShort[shortname]; ok && prev != id {
			a := r.byID[prev]
			a.Shortname = ""
			r.byID[prev] = a
		}
		r.byShort[shortname] = id
	}
	r.byID[id] = Activity{ID: id, Shortname: shortname}
	return true
}

// Lookup finds an activity by shortname first, then canonical id.
func (r *Registry) Lookup(name string) (Activity, bool) {
	if id, ok := r.byShort[name]; ok {
		return r.byID[id], true
	}
	a, ok := r.byID[name]
	return a, ok
}

// List returns all activities ordered by shortname, then id. Activities
// without a shortname sort last.
func (r *Registry) List() []Activity {
	out := make([]Activity, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.Shortname == "") != (b.Shortname == "") {
			return a.Shortname != ""
		}
		if a.Shortname != b.Shortname {
			return a.Shortname < b.Shortname
		}
		return a.ID < b.ID
	})
	return out
}

// DisplayName returns the shortname of id, or id itself.
func (r *Registry) DisplayName(id string) string {
	if a, ok := r.byID[id]; ok && a.Shortname != "" {
		return a.Shortname
	}
	return id
}

// Resolution is the outcome of resolving an activity reference.
type Resolution struct {
	ID       string
	Override bool
	Internal bool
	Known    bool // found in the registry
}

// Resolve maps a reference as typed by the user to a canonical id.
func (r *Registry) Resolve(token string) (Resolution, error) {
	if rest, ok := strings.CutPrefix(token, "+"); ok {
		if rest == "" {
			return Resolution{}, fmt.Errorf("%w: empty override", ErrUnknownActivity)
		}
		id, err := r.expand(rest)
		if err != nil {
			return Resolution{}, err
		}
		_, known := r.byID[id]
		return Resolution{ID: id, Override: true, Internal: logentry.IsInternal(id), Known: known}, nil
	}
	switch {
	case logentry.IsInternal(token):
		_, known := r.byID[token]
		return Resolution{ID: token, Internal: true, Known: known}, nil
	case logentry.IsBreak(token), logentry.IsStart(token):
		return Resolution{ID: token, Known: true}, nil
	case isNumeric(token):
		id, err := r.expand(token)
		if err != nil {
			return Resolution{}, err
		}
		_, known := r.byID[id]
		return Resolution{ID: id, Known: known}, nil
	}
	if a, ok := r.Lookup(token); ok {
		return Resolution{ID: a.ID, Known: true}, nil
	}
	return Resolution{}, fmt.Errorf("%w: %q (use +%s to log it anyway)", ErrUnknownActivity, token, token)
}

// Canonical maps a reference found in a log to a canonical id: numeric
// references get the prefix, known shortnames become their id, anything
// else is kept. Reading a log uses this instead of Resolve so that
// hand-written lines never fail lookup.
func (r *Registry) Canonical(token string) (string, error) {
	if a, ok := r.Lookup(token); ok {
		return a.ID, nil
	}
	return r.expand(token)
}

func (r *Registry) expand(token string) (string, error) {
	if !isNumeric(token) {
		return token, nil
	}
	if r.prefix == "" {
		return "", fmt.Errorf("%w: %q", ErrNoPrefixConfigured, token)
	}
	return r.prefix + "-" + token, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ShortnameTag returns the shortname carried by a "=name" tag, if any.
func ShortnameTag(tags []string) (string, bool) {
	for _, t := range tags {
		if name, ok := strings.CutPrefix(t, "="); ok && name != "" {
			return name, true
		}
	}
	return "", false
}

// Format writes the registry in activities-file form.
func (r *Registry) Format(w io.Writer) error {
	for _, a := range r.List() {
		line := a.ID
		if a.Shortname != "" {
			line += " " + a.Shortname
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
