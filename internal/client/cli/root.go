package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophtasks/internal/buildinfo"
	"github.com/dmitrijs2005/gophtasks/internal/client/config"
	"github.com/dmitrijs2005/gophtasks/internal/exitcode"
	"github.com/spf13/cobra"
)

// reportedError marks a failure that was already shown to the user.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// runFunc has the shape of an App method expression such as (*App).Show.
type runFunc func(a *App, ctx context.Context, args []string) error

// withApp loads the configuration, builds an App for one command and closes
// it afterwards.
func withApp(streams Streams, fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		a, err := NewApp(cmd.Context(), cfg, streams)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := fn(a, cmd.Context(), args); err != nil {
			a.report(err)
			return &reportedError{err: err}
		}
		return nil
	}
}

// Execute runs the command line args and returns the process exit code.
func Execute(ctx context.Context, streams Streams, args []string) int {
	root := NewRootCommand(streams)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitcode.Success
	}
	var rep *reportedError
	if !errors.As(err, &rep) {
		fmt.Fprintln(streams.Err, "Error:", err)
	}
	return exitcode.For(err)
}

// NewRootCommand builds the gophtasks command tree. Without a subcommand the
// interactive shell is started.
func NewRootCommand(streams Streams) *cobra.Command {
	root := &cobra.Command{
		Use:           "gophtasks",
		Short:         "Command-line client for the gophtasks task manager",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: withApp(streams, func(a *App, ctx context.Context, _ []string) error {
			return a.Run(ctx)
		}),
	}
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newVersionCommand(),
		&cobra.Command{
			Use:   "signup",
			Short: "Create an account and sign in",
			Args:  cobra.NoArgs,
			RunE: withApp(streams, func(a *App, ctx context.Context, _ []string) error {
				return a.Signup(ctx)
			}),
		},
		&cobra.Command{
			Use:   "login [email]",
			Short: "Sign in",
			Args:  cobra.MaximumNArgs(1),
			RunE:  withApp(streams, (*App).Login),
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Sign out and forget the stored tokens",
			Args:  cobra.NoArgs,
			RunE: withApp(streams, func(a *App, ctx context.Context, _ []string) error {
				return a.Logout(ctx)
			}),
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Show the signed-in user",
			Args:  cobra.NoArgs,
			RunE: withApp(streams, func(a *App, ctx context.Context, _ []string) error {
				return a.Whoami(ctx)
			}),
		},
		newListCommand(streams),
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show one task",
			Args:  cobra.ExactArgs(1),
			RunE:  withApp(streams, (*App).Show),
		},
		newAddCommand(streams),
		&cobra.Command{
			Use:     "done <id>",
			Aliases: []string{"toggle"},
			Short:   "Toggle the completion of a task",
			Args:    cobra.ExactArgs(1),
			RunE:    withApp(streams, (*App).Done),
		},
		newDeleteCommand(streams),
		&cobra.Command{
			Use:   "search [text...]",
			Short: "Find tasks by text and priority:<level>",
			RunE:  withApp(streams, (*App).Search),
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show task statistics",
			Args:  cobra.NoArgs,
			RunE: withApp(streams, func(a *App, ctx context.Context, _ []string) error {
				return a.Stats(ctx)
			}),
		},
		&cobra.Command{
			Use:   "settings",
			Short: "Show the effective configuration",
			Args:  cobra.NoArgs,
			RunE: withApp(streams, func(a *App, ctx context.Context, _ []string) error {
				return a.Settings(ctx)
			}),
		},
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}

func newListCommand(streams Streams) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: withApp(streams, func(a *App, ctx context.Context, _ []string) error {
			return a.List(ctx, []string{status})
		}),
	}
	cmd.Flags().StringVarP(&status, "status", "s", "all", "filter: all, open or done")
	return cmd
}

func newAddCommand(streams Streams) *cobra.Command {
	var desc, due, priority string
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(streams, func(a *App, ctx context.Context, args []string) error {
			create, err := buildCreate(strings.Join(args, " "), desc, due, priority)
			if err != nil {
				return err
			}
			return a.createTask(ctx, create)
		}),
	}
	cmd.Flags().StringVarP(&desc, "description", "D", "", "task description")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high")
	return cmd
}

func newDeleteCommand(streams Streams) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: withApp(streams, func(a *App, ctx context.Context, args []string) error {
			if !yes {
				return a.Delete(ctx, args)
			}
			id, err := taskIDArg(args, "rm <id>")
			if err != nil {
				return err
			}
			return a.deleteTask(ctx, id)
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
