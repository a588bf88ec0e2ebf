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
	"buildboard/internal/task"
)

func init() {
	Register(&AvailableCmd{})
}

// AvailableCmd shows which roster members are free for a task's dates.
type AvailableCmd struct {
	role string
}

func (c *AvailableCmd) Name() string      { return "available" }
func (c *AvailableCmd) Aliases() []string { return nil }
func (c *AvailableCmd) Synopsis() string  { return "Check who is free for a task" }
func (c *AvailableCmd) Usage() string     { return "buildboard available [--role lead|support] <ref>" }
func (c *AvailableCmd) NeedsStore() bool  { return true }

func (c *AvailableCmd) RegisterFlags(fs *flag.FlagSet) {
	c.role = ""
	fs.StringVar(&c.role, "role", "", "")
}

// SetRole sets the member pool (for testing).
func (c *AvailableCmd) SetRole(role string) {
	c.role = role
}

func (c *AvailableCmd) Run(ctx context.Context, cfg *config.Config, ws *Workspace, args []string, out, errOut io.Writer) int {
	var pool []task.TeamMember
	switch c.role {
	case "":
		pool = ws.Roster.Assignable()
	case "lead":
		pool = ws.Roster.Leads()
	case "support":
		pool = ws.Roster.Support()
	default:
		fmt.Fprintf(errOut, "error: unknown role: %s\n", c.role)
		return exitcode.UserError
	}

	t, tasks, code := lookupTask(ctx, ws.Tasks(), args, errOut)
	if code != exitcode.Success {
		return code
	}
	if _, ok := allocation.RangeOf(t); !ok {
		fmt.Fprintf(errOut, "warning: %s has no valid dates; everyone counts as available\n", t.ID)
	}
	output.Availability(out, allocation.Assess(t, pool, tasks))
	return exitcode.Success
}
