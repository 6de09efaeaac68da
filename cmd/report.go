package cmd

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/tt/internal/report"
	"github.com/fakeyudi/tt/internal/store"
)

type reportOptions struct {
	yesterday bool
	week      bool
	date      string
	format    string
	cutoff    time.Duration
	follow    bool
}

// window picks the days to report on, relative to now.
func (o reportOptions) window(now time.Time) (report.Window, error) {
	date := now
	switch {
	case o.date != "" && o.yesterday:
		return report.Window{}, fmt.Errorf("--date and --yesterday are mutually exclusive")
	case o.date != "":
		d, err := time.ParseInLocation("2006-01-02", o.date, now.Location())
		if err != nil {
			return report.Window{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", o.date)
		}
		date = d
	case o.yesterday:
		date = now.AddDate(0, 0, -1)
	}
	if o.week {
		return report.WeekWindow(date), nil
	}
	return report.DayWindow(date), nil
}

func (o reportOptions) renderer() (report.Renderer, error) {
	format := o.format
	if format == "" {
		format = report.FormatLong
		if o.week {
			format = report.FormatTable
		}
	}
	return report.RendererFor(format)
}

func newReportCmd(a *app) *cobra.Command {
	var opts reportOptions
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the time spent per activity",
		Long: `Report on today, yesterday, a given date or the week up to that date.
Internal (_name) time, and with --cutoff the time of short activities, is
spread evenly over the other activities.

Formats: ` + strings.Join(report.Formats(), ", "),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, a, opts)
		},
	}
	f := cmd.Flags()
	f.BoolVarP(&opts.yesterday, "yesterday", "y", false, "report on yesterday")
	f.BoolVarP(&opts.week, "week", "w", false, "report on the week up to the date")
	f.StringVarP(&opts.date, "date", "d", "", "report on this date (YYYY-MM-DD)")
	f.StringVarP(&opts.format, "format", "f", "", "output format (default long, table for --week)")
	f.DurationVarP(&opts.cutoff, "cutoff", "c", 0, "distribute activities shorter than this (e.g. 15m)")
	f.BoolVar(&opts.follow, "follow", false, "print the report again every time the log changes")
	return cmd
}

func runReport(cmd *cobra.Command, a *app, opts reportOptions) error {
	if opts.cutoff < 0 {
		return fmt.Errorf("--cutoff must not be negative")
	}
	w, err := opts.window(a.now())
	if err != nil {
		return err
	}
	renderer, err := opts.renderer()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	render := func() error {
		r, err := a.tracker.Report(w, opts.cutoff)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := renderer.Render(&buf, r); err != nil {
			return err
		}
		_, err = out.Write(buf.Bytes())
		return err
	}

	if err := render(); err != nil {
		return err
	}
	if !opts.follow {
		return nil
	}
	return store.Follow(cmd.Context(), a.store, w.To, render)
}
