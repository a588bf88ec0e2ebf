package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"slices"

	"buildboard/internal/allocation"
	"buildboard/internal/config"
	"buildboard/internal/exitcode"
	"buildboard/internal/repository"
	"buildboard/internal/task"
)

func init() {
	Register(&AllocateCmd{})
}

// AllocateCmd assigns a lead, an optional secondary lead and a team, and
// moves the task to Assigned. Role and availability checks only warn.
type AllocateCmd struct {
	lead          string
	secondaryLead string
	team          string
}

func (c *AllocateCmd) Name() string      { return "allocate" }
func (c *AllocateCmd) Aliases() []string { return []string{"assign"} }
func (c *AllocateCmd) Synopsis() string  { return "Assign people to a task" }
func (c *AllocateCmd) Usage() string {
	return "buildboard allocate --lead <name> [--secondary-lead <name>] [--team <a,b>] <ref>"
}
func (c *AllocateCmd) NeedsStore() bool { return true }

func (c *AllocateCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = AllocateCmd{}
	fs.StringVar(&c.lead, "lead", "", "")
	fs.StringVar(&c.secondaryLead, "secondary-lead", "", "")
	fs.StringVar(&c.team, "team", "", "")
}

// SetAllocation sets the people to assign (for testing).
func (c *AllocateCmd) SetAllocation(lead, secondaryLead, team string) {
	c.lead, c.secondaryLead, c.team = lead, secondaryLead, team
}

func (c *AllocateCmd) Run(ctx context.Context, cfg *config.Config, ws *Workspace, args []string, out, errOut io.Writer) int {
	if c.lead == "" {
		fmt.Fprintln(errOut, "error: --lead required")
		return exitcode.UserError
	}
	a := repository.Allocation{Lead: c.lead, SecondaryLead: c.secondaryLead, Team: parseTeam(c.team)}

	repo := ws.Tasks()
	t, tasks, code := lookupTask(ctx, repo, args, errOut)
	if code != exitcode.Success {
		return code
	}
	if !cfg.Quiet {
		warnAllocation(ws, t, tasks, a, errOut)
	}

	if _, err := repo.AllocateTask(ctx, t.ID, a); err != nil {
		return storeExit(err)
	}
	return exitcode.Success
}

// warnAllocation reports members outside their eligible role and members
// busy on overlapping tasks.
func warnAllocation(ws *Workspace, t task.Task, tasks []task.Task, a repository.Allocation, errOut io.Writer) {
	if ws.Roster != nil {
		if !hasMember(ws.Roster.Leads(), a.Lead) {
			fmt.Fprintf(errOut, "warning: %s is not an eligible lead\n", a.Lead)
		}
		support := ws.Roster.Support()
		for _, name := range a.Team {
			if !hasMember(support, name) {
				fmt.Fprintf(errOut, "warning: %s is not an eligible team member\n", name)
			}
		}
	}

	people := append([]string{a.Lead}, a.Team...)
	if a.SecondaryLead != "" {
		people = append(people, a.SecondaryLead)
	}
	for _, name := range people {
		for _, other := range allocation.Conflicts(name, t, tasks) {
			fmt.Fprintf(errOut, "warning: %s is busy on %s (%s to %s)\n", name, other.ID, other.StartDate, other.EndDate)
		}
	}
}

func hasMember(members []task.TeamMember, name string) bool {
	return slices.ContainsFunc(members, func(m task.TeamMember) bool { return m.Name == name })
}
