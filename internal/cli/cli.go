package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/specialistvlad/stagegrid/internal/app"
	"github.com/specialistvlad/stagegrid/internal/config"
	"github.com/specialistvlad/stagegrid/internal/registry"
	"github.com/spf13/cobra"
)

// Version is reported by --version. It is overridden at build time.
var Version = "dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Unwrap returns the error that caused the exit.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// usageError marks err as a problem with the command line itself.
func usageError(err error) *ExitError {
	return &ExitError{Code: 2, Message: err.Error(), Err: err}
}

// Execute parses args, builds the application and runs the selected command.
// Every returned error is an *ExitError: 2 for usage and configuration
// errors, 1 for failed runs.
func Execute(ctx context.Context, args []string, outW io.Writer, modules ...registry.Module) error {
	root := NewRootCommand(outW, modules...)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	switch {
	case errors.As(err, &exitErr):
		return exitErr
	case errors.Is(err, config.ErrInvalid), errors.Is(err, config.ErrRead), errors.Is(err, app.ErrNoPath):
		return usageError(err)
	default:
		return &ExitError{Code: 1, Message: err.Error(), Err: err}
	}
}

// NewRootCommand builds the stagegrid command tree. Without modules the
// application registers its core modules.
func NewRootCommand(outW io.Writer, modules ...registry.Module) *cobra.Command {
	root := &cobra.Command{
		Use:   "stagegrid",
		Short: "Run staged task arrangements concurrently",
		Long: `stagegrid executes arrangements: ordered stages of dependency expressions
such as "1,2:3", where 3 runs once both 1 and 2 completed.

The first stage runs alone, every middle stage runs concurrently with the
others, and the last stage runs once all of them finished.

Every flag can also be set through the environment with the STAGEGRID_
prefix, for example STAGEGRID_WORKERS=8 or STAGEGRID_LOG_FORMAT=json.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(outW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := root.PersistentFlags()
	flags.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.Int("workers", 0, "Number of pool workers. 0 selects the default.")
	flags.Int("queue-size", 128, "Number of tasks that may wait for a free worker.")
	flags.Int("healthcheck-port", 0, "Port for the /health and /metrics server. 0 is disabled.")

	root.AddCommand(
		newRunCmd(modules),
		newValidateCmd(modules),
		newWatchCmd(modules),
		newTasksCmd(modules),
	)
	return root
}

// pathArg requires exactly one positional argument, the arrangement path.
func pathArg(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return usageError(fmt.Errorf("expected one arrangement path, got %d arguments", len(args)))
	}
	return nil
}

// withApp builds the application for cmd, runs fn and closes the application.
func withApp(cmd *cobra.Command, path string, modules []registry.Module, fn func(ctx context.Context, a *app.App) error) error {
	v, err := bindSettings(cmd)
	if err != nil {
		return err
	}
	cfg, err := appConfig(v, path)
	if err != nil {
		return usageError(err)
	}

	a := app.NewApp(cmd.OutOrStdout(), cfg, modules...)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = a.Close(ctx)
	}()
	return fn(cmd.Context(), a)
}
