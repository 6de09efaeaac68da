package cmd

import "github.com/spf13/cobra"

func newIsActiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "is-active",
		Short: "Exit 0 when an activity other than break is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			active, err := a.tracker.IsActive()
			if err != nil {
				return err
			}
			if !active {
				return errInactive
			}
			return nil
		},
	}
}
