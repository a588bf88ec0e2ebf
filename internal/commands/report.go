package commands

import (
	"context"
	"flag"
	"io"

	"buildboard/internal/config"
	"buildboard/internal/exitcode"
	"buildboard/internal/output"
	"buildboard/internal/report"
)

func init() {
	Register(&ReportCmd{})
}

// ReportCmd prints the dashboard: cards, breakdowns, deadlines and load.
type ReportCmd struct {
	timeline bool
}

func (c *ReportCmd) Name() string      { return "report" }
func (c *ReportCmd) Aliases() []string { return []string{"dashboard"} }
func (c *ReportCmd) Synopsis() string  { return "Print the dashboard summary" }
func (c *ReportCmd) Usage() string     { return "buildboard report [--timeline]" }
func (c *ReportCmd) NeedsStore() bool  { return true }

func (c *ReportCmd) RegisterFlags(fs *flag.FlagSet) {
	c.timeline = false
	fs.BoolVar(&c.timeline, "timeline", false, "")
}

// SetTimeline selects the timeline view (for testing).
func (c *ReportCmd) SetTimeline(on bool) {
	c.timeline = on
}

func (c *ReportCmd) Run(ctx context.Context, cfg *config.Config, ws *Workspace, args []string, out, errOut io.Writer) int {
	tasks, err := ws.Tasks().ListTasks(ctx)
	if err != nil {
		return storeExit(err)
	}
	if c.timeline {
		output.Timeline(out, report.Timeline(tasks))
		return exitcode.Success
	}
	snap := report.Build(tasks, ws.Roster.Assignable(), ws.Roster.Snapshot().EDCSystems, ws.now())
	output.Summary(out, snap)
	return exitcode.Success
}
