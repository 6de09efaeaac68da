package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all configurable tt settings.
type Config struct {
	Prefix  string  `toml:"prefix"` // prepended to numeric activities, e.g. "JIRA" for "42" -> "JIRA-42"
	WatchI3 WatchI3 `toml:"watch_i3"`
}

// WatchI3 configures the workspace watcher. Values are in seconds.
type WatchI3 struct {
	GranularitySecs int `toml:"granularity"`
	TimeboxSecs     int `toml:"timebox"`
}

// Granularity is the watcher's polling interval.
func (w WatchI3) Granularity() time.Duration {
	return time.Duration(w.GranularitySecs) * time.Second
}

// Timebox is the dwell time before the watcher acts.
func (w WatchI3) Timebox() time.Duration {
	return time.Duration(w.TimeboxSecs) * time.Second
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		WatchI3: WatchI3{
			GranularitySecs: 10,
			TimeboxSecs:     120,
		},
	}
}

// Load reads the TOML config file at path.
// Returns defaults if the file is absent. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, &ParseError{Path: path, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, &ParseError{Path: path, Err: err}
	}
	return cfg, nil
}

// Validate rejects values the watcher cannot run with.
func (c Config) Validate() error {
	if c.WatchI3.GranularitySecs <= 0 {
		return fmt.Errorf("watch_i3.granularity must be positive, got %d", c.WatchI3.GranularitySecs)
	}
	if c.WatchI3.TimeboxSecs <= 0 {
		return fmt.Errorf("watch_i3.timebox must be positive, got %d", c.WatchI3.TimeboxSecs)
	}
	return nil
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
