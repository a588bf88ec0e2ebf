// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"buildboard/internal/config"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsStore returns true if the command reads or writes the task sheet.
	// Commands like help, version, login, logout return false.
	NeedsStore() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, paths, env).
	// ws is nil if NeedsStore() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, ws *Workspace, args []string, out, errOut io.Writer) int
}

// Unmapped is implemented by commands that read only the raw sheets and can
// run before a column scheme exists.
type Unmapped interface {
	Unmapped() bool
}

// LongRunning is implemented by commands that log at the configured level
// without --debug.
type LongRunning interface {
	LongRunning() bool
}
