package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newResumeCmd(a *app) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "resume [n]",
		Short: "Go back to an earlier activity of today",
		Long: `Log the n-th most recent earlier activity of today again, with its tags.
Resuming twice in a row walks further back instead of toggling.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				frames, err := a.tracker.ResumeStack()
				if err != nil {
					return err
				}
				for i, f := range frames {
					fmt.Fprintf(out, "%d %s\n", i+1, strings.TrimSpace(f.Activity+" "+strings.Join(f.Tags, " ")))
				}
				return nil
			}

			n := 1
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil || v < 1 {
					return fmt.Errorf("invalid stack position %q", args[0])
				}
				n = v
			}
			l, err := a.tracker.Resume(n)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, l.String())
			return a.printStatus(out)
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "print the resume stack instead")
	return cmd
}
