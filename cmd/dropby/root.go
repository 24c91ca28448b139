package main

import (
	"os"
	"time"

	"github.com/DropBy-app/dropby/client"
	"github.com/DropBy-app/dropby/errors"
	"github.com/DropBy-app/dropby/tasks/dismissal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

// app carries the global flags shared by every subcommand.
type app struct {
	serverURL string
	statePath string
	timeout   time.Duration
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "dropby",
		Short:         "Post and pick up small neighbourhood tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	server := os.Getenv("DROPBY_SERVER")
	if server == "" {
		server = defaultServer
	}
	rootCmd.PersistentFlags().StringVar(&a.serverURL, "server", server, "DropBy server URL (env DROPBY_SERVER)")
	rootCmd.PersistentFlags().StringVar(&a.statePath, "state", "", "Path of the local state file (default: user config dir, env DROPBY_STATE)")
	rootCmd.PersistentFlags().DurationVar(&a.timeout, "timeout", client.DefaultTimeout, "Request timeout")

	rootCmd.AddCommand(
		newServeCmd(),
		newListCmd(a),
		newCreateCmd(a),
		newCompleteCmd(a),
		newDismissCmd(a),
		newComposeCmd(a),
	)

	return rootCmd
}

// describeError renders a TaskError without its type prefix.
func describeError(err error) string {
	if taskErr, ok := errors.IsTaskError(err); ok {
		return taskErr.Message
	}
	return err.Error()
}

func (a *app) client() (*client.Client, error) {
	return client.New(a.serverURL, a.timeout)
}

func (a *app) loadState() (*dismissal.State, error) {
	path := a.statePath
	if path == "" {
		var err error
		if path, err = dismissal.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return dismissal.Load(path)
}

func success(cmd *cobra.Command, format string, args ...any) {
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✅ "+format+"\n", args...)
}
