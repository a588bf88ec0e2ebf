package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"buildboard/internal/config"
	"buildboard/internal/exitcode"
	"buildboard/internal/report"
	"buildboard/internal/storage"
)

func init() {
	Register(&ExportCmd{})
}

// ExportCmd writes a report snapshot to the configured export storage.
type ExportCmd struct {
	format string

	// Storage overrides the configured export storage (for testing).
	Storage storage.Storage
}

func (c *ExportCmd) Name() string      { return "export" }
func (c *ExportCmd) Aliases() []string { return nil }
func (c *ExportCmd) Synopsis() string  { return "Export a report as CSV or JSON" }
func (c *ExportCmd) Usage() string     { return "buildboard export [--format csv|json]" }
func (c *ExportCmd) NeedsStore() bool  { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", report.FormatCSV, "")
}

// SetFormat sets the export format (for testing).
func (c *ExportCmd) SetFormat(format string) {
	c.format = format
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, ws *Workspace, args []string, out, errOut io.Writer) int {
	format := c.format
	if format == "" {
		format = report.FormatCSV
	}
	if format != report.FormatCSV && format != report.FormatJSON {
		fmt.Fprintf(errOut, "error: unknown format: %s\n", format)
		return exitcode.UserError
	}

	store := c.Storage
	if store == nil {
		var err error
		store, err = storage.New(ctx, cfg.Env.ExportEnv)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.AuthError
		}
	}

	tasks, err := ws.Tasks().ListTasks(ctx)
	if err != nil {
		return storeExit(err)
	}
	snap := report.Build(tasks, ws.Roster.Assignable(), ws.Roster.Snapshot().EDCSystems, ws.now())
	path, err := report.Export(ctx, store, snap, format)
	if err != nil {
		fmt.Fprintf(errOut, "error: export failed: %v\n", err)
		return exitcode.BackendError
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, path)
	}
	return exitcode.Success
}
