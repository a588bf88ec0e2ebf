package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"buildboard/internal/sheet"
	"buildboard/internal/storage"
	"buildboard/internal/task"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Snapshot is the full report at one point in time.
type Snapshot struct {
	GeneratedAt  time.Time         `json:"generatedAt"`
	Summary      Summary           `json:"summary"`
	StatusCounts []StatusCount     `json:"statusCounts"`
	Systems      []SystemCount     `json:"systems"`
	Resources    []Resource        `json:"resources"`
	Idle         []task.TeamMember `json:"idle"`
	Overdue      []task.Task       `json:"overdue"`
	Upcoming     []task.Task       `json:"upcoming"`
	Tasks        []task.Task       `json:"tasks,omitempty"`
}

// Build assembles a snapshot. members are the assignable team members.
func Build(tasks []task.Task, members []task.TeamMember, systems []string, now time.Time) Snapshot {
	return Snapshot{
		GeneratedAt:  now.UTC(),
		Summary:      Summarize(tasks, now),
		StatusCounts: StatusCounts(tasks),
		Systems:      SystemCounts(tasks, systems),
		Resources:    Resources(tasks, members),
		Idle:         Idle(tasks, members),
		Overdue:      Overdue(tasks, now),
		Upcoming:     Upcoming(tasks, now, UpcomingWindow),
		Tasks:        tasks,
	}
}

// csvHeader names the task columns of a CSV export.
var csvHeader = []string{
	"Task ID", "Task Type", "Task Sub Type", "Sponsor", "Project Name", "Priority",
	"EDC System", "Integrations", "Description", "Start Date", "End Date",
	"Scoped Hours", "Secondary Hours", "Status", "Lead", "Secondary Lead", "Team",
	"Requestor", "Requestor Email", "Doc References",
}

// WriteCSV renders the snapshot's tasks as CSV.
func WriteCSV(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, t := range s.Tasks {
		record := []string{
			t.ID, t.Type, t.SubType, t.Sponsor, t.ProjectName, string(t.Priority),
			t.EDCSystem, t.Integrations, t.Description, t.StartDate, t.EndDate,
			strconv.Itoa(t.ScopedHours), strconv.Itoa(t.SecondaryHours), string(t.Status),
			t.Lead, t.SecondaryLead, sheet.JoinTeam(t.Team),
			t.Requestor, t.RequestorEmail, t.DocReferences,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON renders the whole snapshot as indented JSON.
func WriteJSON(s Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Export writes the snapshot to store in format and returns the path used.
func Export(ctx context.Context, store storage.Storage, s Snapshot, format string) (string, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatCSV:
		data, err = WriteCSV(s)
	case FormatJSON:
		data, err = WriteJSON(s)
	default:
		return "", fmt.Errorf("unknown export format: %s", format)
	}
	if err != nil {
		return "", fmt.Errorf("render %s: %w", format, err)
	}

	path := ExportPath(s.GeneratedAt, format)
	if err := store.Write(ctx, path, data); err != nil {
		return "", err
	}
	return path, nil
}

// ExportPath names an export file by generation time.
func ExportPath(at time.Time, format string) string {
	return "reports/" + at.UTC().Format("20060102T150405Z") + "." + format
}
