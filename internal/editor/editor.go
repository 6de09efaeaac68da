// Package editor opens tt's files in the user's $EDITOR.
package editor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// DefaultEditor is used when $VISUAL and $EDITOR are both unset.
const DefaultEditor = "vi"

// Runner starts name with args attached to the terminal and waits for it.
// This abstraction allows mocking in tests.
type Runner func(name string, args ...string) error

// defaultRunner runs the editor as a real subprocess.
func defaultRunner(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Editor launches the configured editor.
type Editor struct {
	Command string // if empty, taken from $VISUAL, then $EDITOR
	Runner  Runner // if nil, runs a real subprocess
}

// Resolve returns the editor command line split into words.
func (e *Editor) Resolve() []string {
	command := e.Command
	if command == "" {
		command = os.Getenv("VISUAL")
	}
	if command == "" {
		command = os.Getenv("EDITOR")
	}
	words := strings.Fields(command)
	if len(words) == 0 {
		return []string{DefaultEditor}
	}
	return words
}

// Open edits path and returns once the editor exits.
func (e *Editor) Open(path string) error {
	runner := e.Runner
	if runner == nil {
		runner = defaultRunner
	}
	words := e.Resolve()
	args := append(words[1:], path)
	if err := runner(words[0], args...); err != nil {
		return fmt.Errorf("running %s: %w", words[0], err)
	}
	return nil
}
