package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"buildboard/internal/config"
	"buildboard/internal/exitcode"
	"buildboard/internal/metrics"
	"buildboard/internal/output"
	"buildboard/internal/task"
)

func init() {
	Register(&MetricsCmd{})
}

// MetricsCmd shows or records quality metrics for a task.
type MetricsCmd struct {
	set multiString
}

func (c *MetricsCmd) Name() string      { return "metrics" }
func (c *MetricsCmd) Aliases() []string { return nil }
func (c *MetricsCmd) Synopsis() string  { return "Show or record quality metrics" }
func (c *MetricsCmd) Usage() string {
	return "buildboard metrics [--set <name>=<units>/<errors>]... <ref>"
}
func (c *MetricsCmd) NeedsStore() bool { return true }

func (c *MetricsCmd) RegisterFlags(fs *flag.FlagSet) {
	c.set = nil
	fs.Var(&c.set, "set", "")
}

// SetEntries sets the figures to record (for testing).
func (c *MetricsCmd) SetEntries(entries ...string) {
	c.set = entries
}

func (c *MetricsCmd) Run(ctx context.Context, cfg *config.Config, ws *Workspace, args []string, out, errOut io.Writer) int {
	updates := make([]metricUpdate, 0, len(c.set))
	for _, s := range c.set {
		u, err := parseMetricUpdate(s)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		updates = append(updates, u)
	}

	store, err := ws.Metrics()
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		if errors.Is(err, ErrNoMetricsSheet) {
			return exitcode.AuthError
		}
		return exitcode.UserError
	}

	t, tasks, code := lookupTask(ctx, ws.Tasks(), args, errOut)
	if code != exitcode.Success {
		return code
	}
	loaded, err := store.Load(ctx, tasks)
	if err != nil {
		return storeExit(err)
	}
	m := metrics.For(loaded, t)

	if len(updates) == 0 {
		output.Metrics(out, m)
		return exitcode.Success
	}

	for _, u := range updates {
		ensureMember(&m, t, u.name)
		if err := m.Set(u.name, u.units, u.errors); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}
	if err := store.Save(ctx, t, m); err != nil {
		return storeExit(err)
	}
	output.Metrics(out, m)
	return exitcode.Success
}

type metricUpdate struct {
	name   string
	units  int
	errors int
}

// parseMetricUpdate reads "Name=units/errors".
func parseMetricUpdate(s string) (metricUpdate, error) {
	name, counts, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return metricUpdate{}, fmt.Errorf("invalid metric %q (want name=units/errors)", s)
	}
	units, errs, ok := strings.Cut(counts, "/")
	if !ok {
		return metricUpdate{}, fmt.Errorf("invalid metric %q (want name=units/errors)", s)
	}
	u, err := strconv.Atoi(strings.TrimSpace(units))
	if err != nil || u < 0 {
		return metricUpdate{}, fmt.Errorf("invalid units in %q", s)
	}
	e, err := strconv.Atoi(strings.TrimSpace(errs))
	if err != nil || e < 0 {
		return metricUpdate{}, fmt.Errorf("invalid errors in %q", s)
	}
	return metricUpdate{name: name, units: u, errors: e}, nil
}

// ensureMember adds name to m when they are on the task but have no entry yet.
func ensureMember(m *metrics.TaskMetrics, t task.Task, name string) {
	for _, e := range m.Members {
		if e.Name == name {
			return
		}
	}
	if t.Involves(name) {
		m.Members = append(m.Members, metrics.Entry{Name: name, Role: metrics.RoleOf(t, name)})
	}
}
