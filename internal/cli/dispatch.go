package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"buildboard/internal/commands"
	"buildboard/internal/config"
	"buildboard/internal/exitcode"
	"buildboard/internal/notify"
)

// WorkspaceFactory opens the sheets and roster a store-backed command works
// with. Used to inject the backend during dispatch.
type WorkspaceFactory func(ctx context.Context, cfg *config.Config) (*commands.Workspace, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  WorkspaceFactory
}

// NewDispatcher creates a new dispatcher with the given registry and workspace factory.
func NewDispatcher(registry *commands.Registry, factory WorkspaceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args runs "list".
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	// Look up command
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	// Parse flags
	remaining := args[1:]
	return d.dispatchCommand(ctx, cmd, remaining, out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	// Parse flags
	if err := fs.Parse(args); err != nil {
		// Handle specific error types
		errStr := err.Error()

		// Check for missing flag value
		if strings.Contains(errStr, "needs a value") || strings.Contains(errStr, "flag needs an argument") {
			// The flag name follows the last colon
			flagName := strings.TrimSpace(errStr[strings.LastIndex(errStr, ":")+1:])
			fmt.Fprintf(errOut, "error: flag needs an argument: %s\n", flagName)
			return exitcode.UserError
		}

		// Check for unknown flag
		if strings.HasPrefix(errStr, "flag provided but not defined:") {
			flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
			fmt.Fprintf(errOut, "error: unknown flag: %s\n", flagName)
			return exitcode.UserError
		}

		// Generic error handling for bad flag values
		if strings.Contains(errStr, "invalid value") {
			fmt.Fprintf(errOut, "error: %s\n", errStr)
			return exitcode.UserError
		}

		fmt.Fprintf(errOut, "error: %s\n", errStr)
		return exitcode.UserError
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	// Logs stay off for one-shot commands unless --debug is given.
	logOut, level := io.Discard, cfg.Env.SlogLevel()
	switch {
	case debug:
		logOut, level = errOut, slog.LevelDebug
	case longRunning(cmd):
		logOut = errOut
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	var ws *commands.Workspace
	if cmd.NeedsStore() {
		if d.factory == nil {
			fmt.Fprintln(errOut, "error: no store configured")
			return exitcode.BackendError
		}
		ws, err = d.factory(ctx, cfg)
		if err != nil && errors.Is(err, ErrNoScheme) && ws != nil && unmapped(cmd) {
			err = nil
		}
		if err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			if errors.Is(err, ErrNotConfigured) {
				return exitcode.AuthError
			}
			return exitcode.BackendError
		}
		if ws.Notifier == nil {
			ws.Notifier = notify.NewConsole(out, errOut, quiet)
		}
		if ws.Logger == nil {
			ws.Logger = logger
		}
	}

	logger.DebugContext(ctx, "running command", "command", cmd.Name(), "args", positionalArgs)
	return cmd.Run(ctx, cfg, ws, positionalArgs, out, errOut)
}

// unmapped reports whether cmd can run on raw sheets without a task scheme.
func unmapped(cmd commands.Command) bool {
	u, ok := cmd.(commands.Unmapped)
	return ok && u.Unmapped()
}

func longRunning(cmd commands.Command) bool {
	l, ok := cmd.(commands.LongRunning)
	return ok && l.LongRunning()
}
