package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/tt/internal/logentry"
	"github.com/fakeyudi/tt/internal/tracker"
	"github.com/fakeyudi/tt/internal/tui"
)

// runInteractive shows the menu and carries out the choice.
func runInteractive(cmd *cobra.Command, a *app) error {
	reg, err := a.tracker.Registry()
	if err != nil {
		return err
	}
	frames, err := a.tracker.ResumeStack()
	if err != nil {
		return err
	}
	cur, ok, err := a.tracker.Current()
	if err != nil {
		return err
	}
	current := ""
	if ok && !logentry.IsBreak(cur.Activity) {
		current = reg.DisplayName(cur.Activity)
	}

	choice, err := a.menu(tui.New(current, tui.Items(frames, reg.List(), reg.DisplayName)))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var l logentry.Line
	switch choice.Kind {
	case tui.ChoiceNone:
		return nil
	case tui.ChoiceEditLog:
		return editDay(cmd, a, a.now())
	case tui.ChoiceEditActivities:
		return editActivities(cmd, a)
	case tui.ChoiceResume:
		l, err = a.tracker.Resume(choice.Resume)
	case tui.ChoiceActivity:
		l, err = a.tracker.Add(tracker.AddRequest{
			Activity:   choice.Activity,
			Tags:       choice.Tags,
			AfterStart: true,
		})
	default:
		return fmt.Errorf("unknown menu choice %d", choice.Kind)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, l.String())
	return a.printStatus(out)
}
