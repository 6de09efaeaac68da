// Package store owns the on-disk layout of tt: one log file per day, the
// activities file and the config file, all under ~/.tt.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fakeyudi/tt/internal/logentry"
	"github.com/fakeyudi/tt/internal/registry"
)

const (
	activitiesFile = "activities"
	configFile     = "config"
	dayLayout      = "2006-01-02"
)

// Store reads and appends tt's files.
type Store interface {
	Dir() string
	DayPath(date time.Time) string
	ActivitiesPath() string
	ConfigPath() string

	// ReadDay parses and validates the log of date. A day with no file is
	// an empty log.
	ReadDay(date time.Time) ([]logentry.Line, error)
	// Append writes one line to the end of date's log in a single write.
	Append(date time.Time, l logentry.Line) error

	// ReadActivities loads the registry. A missing file is an empty registry.
	ReadActivities(prefix string) (*registry.Registry, error)
	// AppendActivity adds one activity line to the activities file.
	AppendActivity(a registry.Activity) error
	// SaveActivities rewrites the activities file atomically.
	SaveActivities(reg *registry.Registry) error
}

// diskStore is the concrete Store rooted at a directory.
type diskStore struct {
	dir string
}

// Open returns a Store rooted at dir, creating dir if needed.
func Open(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &diskStore{dir: dir}, nil
}

// DefaultDir returns ~/.tt.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".tt"), nil
}

func (d *diskStore) Dir() string { return d.dir }

func (d *diskStore) DayPath(date time.Time) string {
	return filepath.Join(d.dir, date.Format(dayLayout))
}

func (d *diskStore) ActivitiesPath() string { return filepath.Join(d.dir, activitiesFile) }
func (d *diskStore) ConfigPath() string     { return filepath.Join(d.dir, configFile) }

func (d *diskStore) ReadDay(date time.Time) ([]logentry.Line, error) {
	path := d.DayPath(date)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	defer f.Close()

	lines, err := logentry.ParseAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lines, nil
}

func (d *diskStore) Append(date time.Time, l logentry.Line) error {
	return appendLine(d.DayPath(date), l.String())
}

func (d *diskStore) ReadActivities(prefix string) (*registry.Registry, error) {
	f, err := os.Open(d.ActivitiesPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return registry.New(prefix), nil
		}
		return nil, fmt.Errorf("failed to read activities: %w", err)
	}
	defer f.Close()

	reg, err := registry.Load(f, prefix)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.ActivitiesPath(), err)
	}
	return reg, nil
}

func (d *diskStore) AppendActivity(a registry.Activity) error {
	line := a.ID
	if a.Shortname != "" {
		line += " " + a.Shortname
	}
	return appendLine(d.ActivitiesPath(), line)
}

// SaveActivities writes the registry to a temp file and renames it over
// the activities file.
func (d *diskStore) SaveActivities(reg *registry.Registry) (err error) {
	var buf bytes.Buffer
	if err := reg.Format(&buf); err != nil {
		return fmt.Errorf("failed to save activities: %w", err)
	}

	// Write to a temp file in the same directory so os.Rename is atomic.
	tmp, err := os.CreateTemp(d.dir, "activities-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to save activities: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any error path.
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save activities: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to save activities: %w", err)
	}
	if err = os.Rename(tmpName, d.ActivitiesPath()); err != nil {
		return fmt.Errorf("failed to save activities: %w", err)
	}
	return nil
}

// appendLine adds text plus a newline to path with one write, first
// terminating a final line left unterminated by a hand edit.
func appendLine(path, text string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	defer f.Close()

	data := []byte(text + "\n")
	if missing, err := missingNewline(f); err != nil {
		return fmt.Errorf("failed to append to %s: %w", path, err)
	} else if missing {
		data = append([]byte("\n"), data...)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	return nil
}

func missingNewline(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return last[0] != '\n', nil
}
