package main

import (
	"fmt"
	"time"

	"github.com/DropBy-app/dropby/tasks"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var (
		done bool
		near string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open tasks (or completed ones with --done)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			origin, err := tasks.ParseLocation(near)
			if err != nil {
				return err
			}

			state, err := a.loadState()
			if err != nil {
				return err
			}

			cl, err := a.client()
			if err != nil {
				return err
			}
			all, err := cl.ListAll(cmd.Context())
			if err != nil {
				return err
			}

			vctx := tasks.ViewContext{Dismissed: state.Dismissed(), Origin: origin}
			views := tasks.DeriveViews(all, vctx)

			list := views.Todo
			if done {
				list = views.Done
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks.")
				return nil
			}

			renderTasks(cmd, list, vctx, time.Now())
			return nil
		},
	}

	cmd.Flags().BoolVar(&done, "done", false, "Show completed tasks")
	cmd.Flags().StringVar(&near, "near", "", `Your position as "lat,lng"; adds a distance column`)
	return cmd
}

func renderTasks(cmd *cobra.Command, list []tasks.Task, vctx tasks.ViewContext, now time.Time) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleDouble)

	header := table.Row{
		text.FgGreen.Sprintf("ID"),
		text.FgGreen.Sprintf("%s", text.Bold.Sprintf("Title")),
		text.FgGreen.Sprintf("Requester"),
		text.FgGreen.Sprintf("Type"),
		text.FgGreen.Sprintf("Age"),
	}
	withDistance := vctx.Origin != nil
	if withDistance {
		header = append(header, text.FgGreen.Sprintf("Distance"))
	}
	t.AppendHeader(header)

	for _, task := range list {
		typ := text.FgHiBlue.Sprintf("%s", task.TaskType)
		if task.TaskType == tasks.TypeTask {
			typ = text.FgHiYellow.Sprintf("%s", task.TaskType)
		}

		row := table.Row{task.ID, task.Title, task.Requester, typ, formatAge(now.Sub(task.CreatedAt))}
		if withDistance {
			row = append(row, formatDistance(vctx.DistanceKm(task)))
		}
		t.AppendRow(row)
	}

	t.Render()
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

func formatDistance(km float64, ok bool) string {
	if !ok {
		return "-"
	}
	if km < 1 {
		return fmt.Sprintf("%.0f m", km*1000)
	}
	return fmt.Sprintf("%.1f km", km)
}
