package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"buildboard/internal/config"
	"buildboard/internal/exitcode"
	"buildboard/internal/output"
	"buildboard/internal/roster"
)

func init() {
	Register(&RequestorsCmd{})
}

// RequestorsCmd lists, saves and removes requestors.
type RequestorsCmd struct{}

func (c *RequestorsCmd) Name() string      { return "requestors" }
func (c *RequestorsCmd) Aliases() []string { return nil }
func (c *RequestorsCmd) Synopsis() string  { return "Manage saved requestors" }
func (c *RequestorsCmd) Usage() string {
	return "buildboard requestors [add <name> [<email>] | rm <id>]"
}
func (c *RequestorsCmd) NeedsStore() bool { return true }

func (c *RequestorsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RequestorsCmd) Run(ctx context.Context, cfg *config.Config, ws *Workspace, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		tasks, err := ws.Tasks().ListTasks(ctx)
		if err != nil {
			return storeExit(err)
		}
		output.Requestors(out, ws.Roster.RequestorChoices(tasks))
		return exitcode.Success
	}

	switch args[0] {
	case "add":
		if len(args) < 2 || len(args) > 3 {
			fmt.Fprintln(errOut, "error: usage: buildboard requestors add <name> [<email>]")
			return exitcode.UserError
		}
		email := ""
		if len(args) == 3 {
			email = args[2]
		}
		r, err := ws.Roster.AddRequestor(args[1], email)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		if !cfg.Quiet {
			fmt.Fprintln(out, r.ID)
		}
		return exitcode.Success

	case "rm":
		if len(args) != 2 {
			fmt.Fprintln(errOut, "error: usage: buildboard requestors rm <id>")
			return exitcode.UserError
		}
		if err := ws.Roster.RemoveRequestor(args[1]); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			if errors.Is(err, roster.ErrRequestorNotFound) {
				return exitcode.UserError
			}
			return exitcode.BackendError
		}
		if !cfg.Quiet {
			fmt.Fprintln(out, "ok")
		}
		return exitcode.Success

	default:
		fmt.Fprintf(errOut, "error: unknown subcommand: %s\n", args[0])
		return exitcode.UserError
	}
}
