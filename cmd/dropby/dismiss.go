package main

import (
	"fmt"
	"strings"

	"github.com/DropBy-app/dropby/tasks/dismissal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newDismissCmd(a *app) *cobra.Command {
	var reason string

	reasons := make([]string, len(dismissal.Reasons))
	for i, r := range dismissal.Reasons {
		reasons[i] = string(r)
	}

	cmd := &cobra.Command{
		Use:   "dismiss <id>",
		Short: "Hide a task on this device",
		Long:  "Hide a task on this device. Nothing is sent to the server.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := a.loadState()
			if err != nil {
				return err
			}

			added, err := state.Dismiss(args[0], dismissal.Reason(reason))
			if err != nil {
				return err
			}
			if !added {
				color.New(color.FgYellow).Fprintf(cmd.OutOrStdout(), "Task %s was already dismissed.\n", args[0])
				return nil
			}

			if err := state.Save(); err != nil {
				return err
			}
			success(cmd, "Task %s dismissed.", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", fmt.Sprintf("Why (%s)", strings.Join(reasons, ", ")))
	return cmd
}
