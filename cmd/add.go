package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fakeyudi/tt/internal/logentry"
	"github.com/fakeyudi/tt/internal/tracker"
)

// timeFlag is a pflag.Value accepting HH:MM.
type timeFlag struct {
	t   logentry.Time
	set bool
}

var _ pflag.Value = (*timeFlag)(nil)

func (f *timeFlag) String() string {
	if !f.set {
		return ""
	}
	return f.t.String()
}

func (f *timeFlag) Set(s string) error {
	t, err := logentry.ParseTime(s)
	if err != nil {
		return err
	}
	f.t, f.set = t, true
	return nil
}

func (f *timeFlag) Type() string { return "HH:MM" }

type addOptions struct {
	really bool
	at     timeFlag
	ago    int
}

func (o *addOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&o.really, "really", "r", false, "correct the running activity (or its start time) instead of starting a new one")
	cmd.Flags().VarP(&o.at, "time", "t", "start time of the entry")
	cmd.Flags().IntVarP(&o.ago, "ago", "a", 0, "start the entry this many minutes ago")
}

func (o addOptions) request(args []string) (tracker.AddRequest, error) {
	if o.at.set && o.ago > 0 {
		return tracker.AddRequest{}, fmt.Errorf("--time and --ago are mutually exclusive")
	}
	if o.ago < 0 {
		return tracker.AddRequest{}, fmt.Errorf("--ago must not be negative")
	}
	req := tracker.AddRequest{
		Really: o.really,
		Ago:    time.Duration(o.ago) * time.Minute,
	}
	if o.at.set {
		at := o.at.t
		req.At = &at
	}
	if len(args) > 0 {
		req.Activity = args[0]
		req.Tags = args[1:]
	}
	return req, nil
}

func newAddCmd(a *app) *cobra.Command {
	var opts addOptions
	cmd := &cobra.Command{
		Use:   "add [activity [tags...]]",
		Short: "Log that you now work on an activity",
		Long: `Append an entry to today's log.

The activity is a registered shortname or id, a bare number expanded with the
configured prefix, _name for internal time, +name for an unregistered
activity, or break. A "=short" tag registers the shortname of a +name
activity. With --really the running entry is corrected instead; --really
with only --time or --ago moves the start of the running entry.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, a, opts, args)
		},
	}
	opts.register(cmd)
	return cmd
}

func runAdd(cmd *cobra.Command, a *app, opts addOptions, args []string) error {
	req, err := opts.request(args)
	if err != nil {
		return err
	}
	l, err := a.tracker.Add(req)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, l.String())
	return a.printStatus(out)
}
