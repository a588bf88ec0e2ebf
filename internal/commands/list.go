package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"buildboard/internal/config"
	"buildboard/internal/exitcode"
	"buildboard/internal/output"
	"buildboard/internal/report"
	"buildboard/internal/task"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command. It is also what runs when no command
// is given.
type ListCmd struct {
	status string
	system string
	member string
	card   string
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "buildboard list [--status <s>] [--system <edc>] [--member <name>] [--card <card>]"
}
func (c *ListCmd) NeedsStore() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = ListCmd{}
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.system, "system", "", "")
	fs.StringVar(&c.member, "member", "", "")
	fs.StringVar(&c.card, "card", "", "")
}

// SetFilter sets the filters (for testing).
func (c *ListCmd) SetFilter(status, system, member, card string) {
	c.status, c.system, c.member, c.card = status, system, member, card
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, ws *Workspace, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	card, err := report.ParseCard(c.card)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	f := report.Filter{EDCSystem: c.system, Member: c.member, Card: card}
	if c.status != "" {
		s, ok := task.ParseStatus(c.status)
		if !ok {
			fmt.Fprintf(errOut, "error: unknown status: %s\n", c.status)
			return exitcode.UserError
		}
		f.Status = s
	}

	tasks, err := ws.Tasks().ListTasks(ctx)
	if err != nil {
		return storeExit(err)
	}
	output.TaskTable(out, f.Apply(tasks, ws.now()))
	return exitcode.Success
}
