package commands

import (
	"context"
	"flag"
	"io"

	"buildboard/internal/allocation"
	"buildboard/internal/config"
	"buildboard/internal/exitcode"
	"buildboard/internal/output"
	"buildboard/internal/report"
)

func init() {
	Register(&HoursCmd{})
}

// HoursCmd prints reporting hours: per member, or per participant of one task.
type HoursCmd struct{}

func (c *HoursCmd) Name() string      { return "hours" }
func (c *HoursCmd) Aliases() []string { return nil }
func (c *HoursCmd) Synopsis() string  { return "Show reporting hours" }
func (c *HoursCmd) Usage() string     { return "buildboard hours [<ref>]" }
func (c *HoursCmd) NeedsStore() bool  { return true }

func (c *HoursCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HoursCmd) Run(ctx context.Context, cfg *config.Config, ws *Workspace, args []string, out, errOut io.Writer) int {
	repo := ws.Tasks()
	if len(args) > 0 {
		t, _, code := lookupTask(ctx, repo, args, errOut)
		if code != exitcode.Success {
			return code
		}
		output.Shares(out, allocation.TaskShares(t))
		return exitcode.Success
	}

	tasks, err := repo.ListTasks(ctx)
	if err != nil {
		return storeExit(err)
	}
	output.Resources(out, report.Resources(tasks, ws.Roster.Assignable()))
	return exitcode.Success
}
