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
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	fields taskFlags
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"new"} }
func (c *AddCmd) Synopsis() string  { return "Submit a build request" }
func (c *AddCmd) Usage() string {
	return "buildboard add --project <name> --type <type> [task flags] [description...]"
}
func (c *AddCmd) NeedsStore() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	c.fields.register(fs)
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, ws *Workspace, args []string, out, errOut io.Writer) int {
	t := task.Task{Team: []string{}}
	if len(args) > 0 {
		t.Description = strings.Join(args, " ")
	}
	if err := c.fields.apply(&t); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if strings.TrimSpace(t.ProjectName) == "" {
		fmt.Fprintln(errOut, "error: project required")
		return exitcode.UserError
	}
	if strings.TrimSpace(t.Type) == "" {
		fmt.Fprintln(errOut, "error: task type required")
		return exitcode.UserError
	}

	// A saved requestor fills in the email and keeps its ID.
	if t.Requestor != "" && ws.Roster != nil {
		for _, r := range ws.Roster.Snapshot().Requestors {
			if strings.EqualFold(r.Name, t.Requestor) {
				t.RequestorID = r.ID
				if t.RequestorEmail == "" {
					t.RequestorEmail = r.Email
				}
				break
			}
		}
	}

	created, err := ws.Tasks().CreateTask(ctx, t)
	if err != nil {
		return storeExit(err)
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, created.ID)
	}
	return exitcode.Success
}
