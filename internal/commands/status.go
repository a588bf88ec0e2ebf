package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"buildboard/internal/config"
	"buildboard/internal/exitcode"
	"buildboard/internal/task"
)

func init() {
	Register(&StatusCmd{})
}

// StatusCmd moves a task to another lifecycle status. Any status may follow
// any other.
type StatusCmd struct{}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return nil }
func (c *StatusCmd) Synopsis() string  { return "Set the status of a task" }
func (c *StatusCmd) Usage() string     { return "buildboard status <ref> <status...>" }
func (c *StatusCmd) NeedsStore() bool  { return true }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, ws *Workspace, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintln(errOut, "error: task reference and status required")
		return exitcode.UserError
	}
	name := strings.Join(args[1:], " ")
	status, ok := task.ParseStatus(name)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown status: %s\n", name)
		return exitcode.UserError
	}

	repo := ws.Tasks()
	t, _, code := lookupTask(ctx, repo, args[:1], errOut)
	if code != exitcode.Success {
		return code
	}
	t.Status = status
	if _, err := repo.UpdateTask(ctx, t); err != nil {
		return storeExit(err)
	}
	return exitcode.Success
}
