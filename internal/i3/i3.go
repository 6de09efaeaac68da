// Package i3 talks to the i3 window manager through i3-msg.
package i3

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// Runner executes i3-msg with args and returns its standard output.
// This abstraction allows mocking in tests.
type Runner func(ctx context.Context, args ...string) ([]byte, error)

// defaultRunner runs i3-msg as a real subprocess.
func defaultRunner(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, "i3-msg", args...).Output()
}

// Workspace is the subset of an i3 workspace reply that tt uses.
type Workspace struct {
	ID      int64  `json:"id"`
	Num     int    `json:"num"`
	Name    string `json:"name"`
	Output  string `json:"output"`
	Focused bool   `json:"focused"`
	Visible bool   `json:"visible"`
}

// titleRe captures the title part of "3: title", ": title" or "title".
var titleRe = regexp.MustCompile(`^(?:\d*:)?\s*([[:alpha:]_].*)$`)

// Title returns the label part of the workspace name, or "" for a bare
// numbered workspace.
func (w Workspace) Title() string {
	m := titleRe.FindStringSubmatch(w.Name)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Client issues i3 IPC requests.
type Client struct {
	Runner Runner // if nil, uses the real i3-msg subprocess
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	runner := c.Runner
	if runner == nil {
		runner = defaultRunner
	}
	out, err := runner(ctx, args...)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("i3-msg %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("i3-msg %s: %w", strings.Join(args, " "), err)
	}
	return out, nil
}

// Workspaces lists all workspaces.
func (c *Client) Workspaces(ctx context.Context) ([]Workspace, error) {
	out, err := c.run(ctx, "-t", "get_workspaces")
	if err != nil {
		return nil, err
	}
	var ws []Workspace
	if err := sonic.Unmarshal(out, &ws); err != nil {
		return nil, fmt.Errorf("decoding workspaces: %w", err)
	}
	return ws, nil
}

type commandResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// SetTitle renames ws to "<num>: <title>".
func (c *Client) SetTitle(ctx context.Context, ws Workspace, title string) error {
	name := title
	if ws.Num >= 0 {
		name = strconv.Itoa(ws.Num) + ": " + title
	}
	cmd := fmt.Sprintf("rename workspace %s to %s", quote(ws.Name), quote(name))
	out, err := c.run(ctx, cmd)
	if err != nil {
		return err
	}
	var results []commandResult
	if err := sonic.Unmarshal(out, &results); err != nil {
		return fmt.Errorf("decoding command reply: %w", err)
	}
	for _, r := range results {
		if !r.Success {
			return fmt.Errorf("i3 %s: %s", cmd, r.Error)
		}
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// Focused returns the focused workspace among ws.
func Focused(ws []Workspace) (Workspace, bool) {
	for _, w := range ws {
		if w.Focused {
			return w, true
		}
	}
	return Workspace{}, false
}
