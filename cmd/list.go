package cmd

import (
	"fmt"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered activities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.tracker.Registry()
			if err != nil {
				return err
			}
			acts := reg.List()
			width := 0
			for _, act := range acts {
				width = max(width, runewidth.StringWidth(act.Shortname))
			}
			out := cmd.OutOrStdout()
			for _, act := range acts {
				if width == 0 {
					fmt.Fprintln(out, act.ID)
					continue
				}
				fmt.Fprintf(out, "%s  %s\n", runewidth.FillRight(act.Shortname, width), act.ID)
			}
			if p := reg.Prefix(); p != "" {
				fmt.Fprintf(out, "\nnumbers expand to %s-<n>\n", p)
			}
			return nil
		},
	}
}
