// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"buildboard/internal/allocation"
	"buildboard/internal/metrics"
	"buildboard/internal/report"
	"buildboard/internal/sheet"
	"buildboard/internal/task"
)

// Separator is the rule printed under section titles.
const Separator = "------------"

// None is printed for empty values.
const None = "-"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// statusColor paints a status when w is a terminal. Every status gets an
// escape sequence of the same width so table columns stay aligned.
func statusColor(w io.Writer, s task.Status) string {
	if _, ok := w.(*os.File); !ok || color.NoColor {
		return string(s)
	}
	attr := color.FgWhite
	switch s {
	case task.StatusPendingAllocation:
		attr = color.FgYellow
	case task.StatusAssigned, task.StatusInProgress:
		attr = color.FgCyan
	case task.StatusInValidation:
		attr = color.FgBlue
	case task.StatusCompleted:
		attr = color.FgGreen
	case task.StatusOnHold:
		attr = color.FgMagenta
	case task.StatusCancelled:
		attr = color.FgRed
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(string(s))
}

// Section prints a section title between separators.
func Section(w io.Writer, title string) {
	fmt.Fprintln(w, Separator)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, Separator)
}

// TaskTable prints one line per task.
func TaskTable(w io.Writer, tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "no tasks")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSTATUS\tPRIORITY\tSYSTEM\tPROJECT\tEND\tLEAD")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, statusColor(w, t.Status), orNone(string(t.Priority)), orNone(t.EDCSystem),
			orNone(singleLine(t.ProjectName)), orNone(t.EndDate), orNone(t.Lead))
	}
	tw.Flush()
}

// TaskDetail prints every field of t.
func TaskDetail(w io.Writer, t task.Task) {
	tw := newTable(w)
	row := func(label, value string) { fmt.Fprintf(tw, "%s:\t%s\n", label, orNone(value)) }
	row("ID", t.ID)
	row("Status", string(t.Status))
	row("Priority", string(t.Priority))
	row("Type", t.Type)
	row("Sub type", t.SubType)
	row("Sponsor", t.Sponsor)
	row("Project", t.ProjectName)
	row("EDC system", t.EDCSystem)
	row("Integrations", t.Integrations)
	row("Start", t.StartDate)
	row("End", t.EndDate)
	row("Scoped hours", fmt.Sprint(t.ScopedHours))
	row("Secondary hours", fmt.Sprint(t.SecondaryHours))
	row("Lead", t.Lead)
	row("Secondary lead", t.SecondaryLead)
	row("Team", sheet.JoinTeam(t.Team))
	row("Requestor", requestor(t))
	row("Docs", t.DocReferences)
	row("Description", singleLine(t.Description))
	tw.Flush()
}

// Shares prints the reporting hours of a task.
func Shares(w io.Writer, shares []allocation.Share) {
	if len(shares) == 0 {
		fmt.Fprintln(w, "nobody assigned")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tROLE\tHOURS")
	for _, s := range shares {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", s.Name, s.Role, s.Hours)
	}
	tw.Flush()
}

// Availability prints each member's verdict and conflicting tasks.
func Availability(w io.Writer, list []allocation.Availability) {
	if len(list) == 0 {
		fmt.Fprintln(w, "no eligible members")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "MEMBER\tROLE\tAVAILABLE\tCONFLICTS")
	for _, a := range list {
		verdict := "yes"
		if !a.Available {
			verdict = "no"
		}
		ids := make([]string, len(a.Conflicts))
		for i, t := range a.Conflicts {
			ids[i] = t.ID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.Member.Name, orNone(a.Member.Role), verdict, orNone(strings.Join(ids, ", ")))
	}
	tw.Flush()
}

// Resources prints each member's task count and hours.
func Resources(w io.Writer, resources []report.Resource) {
	if len(resources) == 0 {
		fmt.Fprintln(w, "no team members")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "MEMBER\tROLE\tTASKS\tHOURS")
	for _, r := range resources {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", r.Member.Name, orNone(r.Member.Role), r.Tasks, r.Hours)
	}
	tw.Flush()
}

// Summary prints the dashboard cards and breakdowns of a snapshot.
func Summary(w io.Writer, s report.Snapshot) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Total:\t%d\n", s.Summary.Total)
	fmt.Fprintf(tw, "Pending allocation:\t%d\n", s.Summary.Pending)
	fmt.Fprintf(tw, "In progress:\t%d\n", s.Summary.InProgress)
	fmt.Fprintf(tw, "Overdue:\t%d\n", s.Summary.Overdue)
	fmt.Fprintf(tw, "Due this week:\t%d\n", s.Summary.DueThisWeek)
	tw.Flush()

	Section(w, "By status")
	tw = newTable(w)
	for _, c := range s.StatusCounts {
		fmt.Fprintf(tw, "%s\t%d\n", c.Status, c.Count)
	}
	tw.Flush()

	Section(w, "By EDC system")
	tw = newTable(w)
	for _, c := range s.Systems {
		fmt.Fprintf(tw, "%s\t%d\n", c.System, c.Count)
	}
	tw.Flush()

	Section(w, "Overdue")
	TaskTable(w, s.Overdue)

	Section(w, "Upcoming")
	TaskTable(w, s.Upcoming)

	Section(w, "Resources")
	Resources(w, s.Resources)

	if len(s.Idle) > 0 {
		names := make([]string, len(s.Idle))
		for i, m := range s.Idle {
			names[i] = m.Name
		}
		fmt.Fprintf(w, "idle: %s\n", strings.Join(names, ", "))
	}
}

// Timeline prints tasks ordered by start date with their span in days.
func Timeline(w io.Writer, entries []report.TimelineEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no dated tasks")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "START\tEND\tDAYS\tID\tSTATUS\tPROJECT")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			e.Task.StartDate, e.Task.EndDate, e.Days, e.Task.ID, statusColor(w, e.Task.Status), orNone(singleLine(e.Task.ProjectName)))
	}
	tw.Flush()
}

// Metrics prints the quality figures of one task.
func Metrics(w io.Writer, m metrics.TaskMetrics) {
	if len(m.Members) == 0 {
		fmt.Fprintln(w, "no metrics")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "MEMBER\tROLE\tUNITS\tERRORS\tPASS RATE")
	for _, e := range m.Members {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.2f%%\n", e.Name, e.Role, e.Units, e.Errors, e.PassRate)
	}
	fmt.Fprintf(tw, "overall\t\t\t\t%.2f%%\n", m.Overall())
	tw.Flush()
}

// Requestors prints saved and seen requestors.
func Requestors(w io.Writer, list []task.Requestor) {
	if len(list) == 0 {
		fmt.Fprintln(w, "no requestors")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL")
	for _, r := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", orNone(r.ID), r.Name, orNone(r.Email))
	}
	tw.Flush()
}

func requestor(t task.Task) string {
	if t.RequestorEmail == "" {
		return t.Requestor
	}
	return fmt.Sprintf("%s <%s>", t.Requestor, t.RequestorEmail)
}

// singleLine replaces line breaks with spaces.
func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return None
	}
	return s
}
