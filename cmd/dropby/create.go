package main

import (
	"fmt"
	"strings"

	"github.com/DropBy-app/dropby/errors"
	"github.com/DropBy-app/dropby/tasks"

	"github.com/spf13/cobra"
)

func newCreateCmd(a *app) *cobra.Command {
	var (
		req         tasks.CreateRequest
		taskType    string
		withCompose bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Post a new task",
		Long: `Post a new task. When --title is empty or --compose is given, a title
and estimate are drafted from the description first; if that fails
nothing is posted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := a.loadState()
			if err != nil {
				return err
			}

			req.TaskType = tasks.TaskType(taskType)
			req.Requester = strings.TrimSpace(req.Requester)
			if req.Requester == "" {
				req.Requester = state.Username
			}
			if req.Requester == "" {
				return errors.NewValidationError("requester is required; pass --requester once and it will be remembered")
			}

			cl, err := a.client()
			if err != nil {
				return err
			}

			if withCompose || strings.TrimSpace(req.Title) == "" {
				suggestion, err := cl.Compose(cmd.Context(), req.Description)
				if err != nil {
					return err
				}
				if strings.TrimSpace(req.Title) == "" {
					req.Title = suggestion.Title
				}
				minutes := suggestion.Estimate.Time
				req.TimeEstimate = &minutes
				req.SizeEstimate = suggestion.Estimate.Size
				fmt.Fprintf(cmd.OutOrStdout(), "Drafted %q (about %d min, %s)\n", req.Title, minutes, suggestion.Estimate.Size)
			}

			id, err := cl.Create(cmd.Context(), req)
			if err != nil {
				return err
			}

			if state.Username != req.Requester {
				state.SetUsername(req.Requester)
				if err := state.Save(); err != nil {
					return err
				}
			}

			success(cmd, "Task %s has been created.", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Description, "description", "d", "", "What needs doing")
	cmd.Flags().StringVarP(&req.Title, "title", "t", "", "Short title (drafted from the description when empty)")
	cmd.Flags().StringVar(&taskType, "type", string(tasks.TypeTask), "info or task")
	cmd.Flags().StringVarP(&req.Location, "location", "l", "", `Where, as "lat,lng"`)
	cmd.Flags().StringVarP(&req.Requester, "requester", "r", "", "Your name (remembered for next time)")
	cmd.Flags().BoolVar(&withCompose, "compose", false, "Draft a title and estimate even when --title is given")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("location")

	return cmd
}
