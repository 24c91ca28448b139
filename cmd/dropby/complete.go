package main

import (
	"github.com/spf13/cobra"
)

func newCompleteCmd(a *app) *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a task as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := a.client()
			if err != nil {
				return err
			}
			if err := cl.MarkComplete(cmd.Context(), args[0], notes); err != nil {
				return err
			}
			success(cmd, "Task %s marked as completed.", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Completion notes")
	return cmd
}
