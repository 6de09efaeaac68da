package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/tt/internal/i3"
	"github.com/fakeyudi/tt/internal/watcher"
)

func newWatchI3Cmd(a *app) *cobra.Command {
	var debug bool
	cmd := &cobra.Command{
		Use:   "watch-i3",
		Short: "Label i3 workspaces with the running activity",
		Long: `Poll i3 for the focused workspace. Once a workspace has been focused for
the configured timebox it is labelled with the running activity, or, when it
already carries a label, that label's activity is logged.

Configure in ~/.tt/config:

  [watch_i3]
  granularity = 10 # seconds between polls
  timebox = 120    # seconds of focus before acting`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			w := watcher.New(&i3.Client{}, watcher.FromTracker(a.tracker), a.cfg.WatchI3, watcher.WithLogger(logger))
			return w.Run(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "log every tick")
	return cmd
}
