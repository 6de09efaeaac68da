package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/tt/internal/config"
	"github.com/fakeyudi/tt/internal/editor"
	"github.com/fakeyudi/tt/internal/report"
	"github.com/fakeyudi/tt/internal/store"
	"github.com/fakeyudi/tt/internal/tracker"
	"github.com/fakeyudi/tt/internal/tui"
)

// errInactive makes is-active exit 1 without printing anything.
var errInactive = errors.New("no activity running")

// app carries what the commands share. It is filled in PersistentPreRunE
// and passed to every command constructor.
type app struct {
	dir     string           // data directory, ~/.tt when empty
	now     func() time.Time // wall clock
	isTTY   func() bool      // whether the interactive menu may run
	menu    func(tui.Model) (tui.Choice, error)
	editor  *editor.Editor
	cfg     config.Config
	store   store.Store
	tracker *tracker.Tracker
}

func newApp() *app {
	return &app{
		now:    time.Now,
		isTTY:  func() bool { return term.IsTerminal(os.Stdin.Fd()) },
		menu:   tui.Run,
		editor: &editor.Editor{},
	}
}

// setup opens the data directory, loads the config and builds the tracker.
func (a *app) setup() error {
	dir := a.dir
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return err
		}
		dir = d
	}
	s, err := store.Open(dir)
	if err != nil {
		return err
	}
	cfg, err := config.Load(s.ConfigPath())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.store = s
	a.tracker = tracker.New(s, cfg, tracker.WithClock(a.now))
	return nil
}

// printStatus writes the one-line summary of today.
func (a *app) printStatus(w io.Writer) error {
	r, err := a.tracker.Report(report.DayWindow(a.now()), 0)
	if err != nil {
		return err
	}
	return (&report.StatusRenderer{}).Render(w, r)
}

func newRootCmd(a *app) *cobra.Command {
	var (
		yesterday bool
		opts      addOptions
	)
	root := &cobra.Command{
		Use:   "tt [activity [tags...]]",
		Short: "Track what you work on in a plain-text log per day",
		Long: `tt keeps one hand-editable log file per day in ~/.tt.

Without arguments on a terminal it opens an interactive menu. With an
activity it is a shorthand for "tt add".`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case yesterday:
				return runReport(cmd, a, reportOptions{yesterday: true})
			case len(args) > 0:
				return runAdd(cmd, a, opts, args)
			case opts.really || opts.at.set || opts.ago != 0:
				return runAdd(cmd, a, opts, nil)
			case a.isTTY():
				return runInteractive(cmd, a)
			}
			return a.printStatus(cmd.OutOrStdout())
		},
	}
	root.Flags().BoolVarP(&yesterday, "yesterday", "y", false, "show yesterday's report")
	opts.register(root)

	root.AddCommand(
		newAddCmd(a),
		newResumeCmd(a),
		newReportCmd(a),
		newListCmd(a),
		newEditCmd(a),
		newIsActiveCmd(a),
		newWatchI3Cmd(a),
	)
	return root
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd(newApp()).ExecuteContext(ctx)
	if err == nil {
		return
	}
	if !errors.Is(err, errInactive) {
		fmt.Fprintln(os.Stderr, "tt:", err)
	}
	stop()
	os.Exit(1)
}
