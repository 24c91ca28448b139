package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newComposeCmd(a *app) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Draft a title and estimate without posting anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := a.client()
			if err != nil {
				return err
			}
			s, err := cl.Compose(cmd.Context(), description)
			if err != nil {
				return err
			}

			label := color.New(color.FgCyan, color.Bold).SprintFunc()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", label("Title:"), s.Title)
			fmt.Fprintf(out, "%s %d min\n", label("Time:"), s.Estimate.Time)
			fmt.Fprintf(out, "%s %s\n", label("Size:"), s.Estimate.Size)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "What needs doing")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}
