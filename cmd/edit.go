package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

type editOptions struct {
	yesterday  bool
	date       string
	activities bool
}

func newEditCmd(a *app) *cobra.Command {
	var opts editOptions
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Open a day's log or the activities file in $EDITOR",
		Long: `Open a log file in $VISUAL or $EDITOR (vi when neither is set).
The file is checked again once the editor exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.activities {
				return editActivities(cmd, a)
			}
			date := a.now()
			switch {
			case opts.date != "":
				d, err := time.ParseInLocation("2006-01-02", opts.date, date.Location())
				if err != nil {
					return fmt.Errorf("invalid date %q: want YYYY-MM-DD", opts.date)
				}
				date = d
			case opts.yesterday:
				date = date.AddDate(0, 0, -1)
			}
			return editDay(cmd, a, date)
		},
	}
	f := cmd.Flags()
	f.BoolVarP(&opts.yesterday, "yesterday", "y", false, "edit yesterday's log")
	f.StringVarP(&opts.date, "date", "d", "", "edit the log of this date (YYYY-MM-DD)")
	f.BoolVarP(&opts.activities, "activities", "a", false, "edit the activities file")
	return cmd
}

func editDay(cmd *cobra.Command, a *app, date time.Time) error {
	path := a.store.DayPath(date)
	if err := a.editor.Open(path); err != nil {
		return err
	}
	reg, err := a.tracker.Registry()
	if err != nil {
		return err
	}
	if _, _, err := a.tracker.Day(date, reg); err != nil {
		return fmt.Errorf("log needs fixing: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s ok\n", path)
	return nil
}

func editActivities(cmd *cobra.Command, a *app) error {
	path := a.store.ActivitiesPath()
	if err := a.editor.Open(path); err != nil {
		return err
	}
	if _, err := a.tracker.Registry(); err != nil {
		return fmt.Errorf("activities need fixing: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s ok\n", path)
	return nil
}
