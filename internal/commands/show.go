package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"buildboard/internal/allocation"
	"buildboard/internal/config"
	"buildboard/internal/exitcode"
	"buildboard/internal/output"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd prints one task in full with its reporting hours.
type ShowCmd struct{}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Show a task" }
func (c *ShowCmd) Usage() string     { return "buildboard show <ref>" }
func (c *ShowCmd) NeedsStore() bool  { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, ws *Workspace, args []string, out, errOut io.Writer) int {
	t, _, code := lookupTask(ctx, ws.Tasks(), args, errOut)
	if code != exitcode.Success {
		return code
	}
	output.TaskDetail(out, t)
	fmt.Fprintln(out)
	output.Shares(out, allocation.TaskShares(t))
	return exitcode.Success
}
