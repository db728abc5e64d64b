package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/specialistvlad/stagegrid/internal/app"
	"github.com/specialistvlad/stagegrid/internal/registry"
	"github.com/spf13/cobra"
)

func addArrangementFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("arrangement", "a", "", "Name of the arrangement to use when the path holds several.")
}

func addInputFlag(cmd *cobra.Command) {
	cmd.Flags().StringToStringP("input", "i", nil, "Input parameter as key=value, referenced as #(key)#. Repeatable.")
}

func newRunCmd(modules []registry.Module) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <path>",
		Short: "Run one arrangement and print its results",
		Long: `Load the arrangement file or directory at path and run one arrangement.
A path holding several arrangements needs --arrangement.`,
		Args: pathArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, args[0], modules, func(ctx context.Context, a *app.App) error {
				_, err := a.Run(ctx)
				return err
			})
		},
	}
	addArrangementFlag(cmd)
	addInputFlag(cmd)
	return cmd
}

func newValidateCmd(modules []registry.Module) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Check arrangements without running them",
		Long: `Load the arrangements at path, resolve their parameters and compile every
stage. Nothing is executed.`,
		Args: pathArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, args[0], modules, func(ctx context.Context, a *app.App) error {
				if err := a.Validate(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s is valid.\n", color.GreenString("✔"), args[0])
				return nil
			})
		},
	}
	addArrangementFlag(cmd)
	return cmd
}

func newWatchCmd(modules []registry.Module) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <path>",
		Short: "Run an arrangement again whenever its files change",
		Long: `Run the arrangement at path, then watch path and run it again after every
change. Failed runs are reported and watching continues until interrupted.`,
		Args: pathArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, args[0], modules, func(ctx context.Context, a *app.App) error {
				return a.Watch(ctx)
			})
		},
	}
	addArrangementFlag(cmd)
	addInputFlag(cmd)
	cmd.Flags().Duration("debounce", app.DefaultWatchDebounce, "Quiet period after a change before running again.")
	return cmd
}

func newTasksCmd(modules []registry.Module) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List the task implementations arrangements can reference",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return usageError(err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, "", modules, func(_ context.Context, a *app.App) error {
				for _, ref := range a.Tasks() {
					fmt.Fprintln(cmd.OutOrStdout(), ref)
				}
				return nil
			})
		},
	}
}
