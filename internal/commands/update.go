package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"buildboard/internal/config"
	"buildboard/internal/exitcode"
)

func init() {
	Register(&UpdateCmd{})
}

// UpdateCmd changes the given fields of a task and keeps the rest.
type UpdateCmd struct {
	fields taskFlags
}

func (c *UpdateCmd) Name() string      { return "update" }
func (c *UpdateCmd) Aliases() []string { return []string{"edit"} }
func (c *UpdateCmd) Synopsis() string  { return "Edit a task" }
func (c *UpdateCmd) Usage() string     { return "buildboard update [task flags] <ref>" }
func (c *UpdateCmd) NeedsStore() bool  { return true }

func (c *UpdateCmd) RegisterFlags(fs *flag.FlagSet) {
	c.fields.register(fs)
}

func (c *UpdateCmd) Run(ctx context.Context, cfg *config.Config, ws *Workspace, args []string, out, errOut io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}
	if !c.fields.given() {
		fmt.Fprintln(errOut, "error: nothing to update")
		return exitcode.UserError
	}

	repo := ws.Tasks()
	t, _, code := lookupTask(ctx, repo, args, errOut)
	if code != exitcode.Success {
		return code
	}
	if err := c.fields.apply(&t); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if _, err := repo.UpdateTask(ctx, t); err != nil {
		return storeExit(err)
	}
	return exitcode.Success
}
