// Package metrics records per-member quality figures (units built, errors
// found) for each task in a separate metrics sheet.
package metrics

import (
	"fmt"
	"math"
	"regexp"

	"buildboard/internal/sheet"
	"buildboard/internal/task"
)

// Metrics sheet fields, as named in a metrics scheme.
const (
	FieldKey      = "metric_id"
	FieldEmployee = "employee"
	FieldProject  = "project"
	FieldTaskType = "task_type"
	FieldSubType  = "task_sub_type"
	FieldUnits    = "units"
	FieldErrors   = "errors"
	FieldPassRate = "pass_rate"
)

// Fields returns the metrics field names in encoding order.
func Fields() []string {
	return []string{
		FieldKey, FieldEmployee, FieldProject, FieldTaskType,
		FieldSubType, FieldUnits, FieldErrors, FieldPassRate,
	}
}

// Role is a member's part in a task.
type Role string

const (
	RoleLead Role = "Lead"
	RoleTeam Role = "Team"
)

// Entry is one member's figures on one task. RowID is zero until the entry
// has been stored.
type Entry struct {
	Name     string  `json:"name"`
	Role     Role    `json:"role"`
	Units    int     `json:"units"`
	Errors   int     `json:"errors"`
	PassRate float64 `json:"passRate"`
	RowID    int64   `json:"rowId,omitempty"`
}

// TaskMetrics holds the entries of one task.
type TaskMetrics struct {
	TaskID  string  `json:"taskId"`
	Members []Entry `json:"members"`
}

// PassRate is the share of error-free units as a percentage rounded to two
// decimals. Zero units give zero.
func PassRate(units, errors int) float64 {
	if units == 0 {
		return 0
	}
	return round2(float64(units-errors) / float64(units) * 100)
}

// Overall is the pass rate over the summed units and errors of every member.
func (m TaskMetrics) Overall() float64 {
	units, errs := 0, 0
	for _, e := range m.Members {
		units += e.Units
		errs += e.Errors
	}
	return PassRate(units, errs)
}

// Set records units and errors for the named member and recomputes the pass
// rate.
func (m *TaskMetrics) Set(name string, units, errors int) error {
	if units < 0 || errors < 0 {
		return fmt.Errorf("units and errors must not be negative")
	}
	for i := range m.Members {
		if m.Members[i].Name == name {
			m.Members[i].Units = units
			m.Members[i].Errors = errors
			m.Members[i].PassRate = PassRate(units, errors)
			return nil
		}
	}
	return fmt.Errorf("%s is not on task %s", name, m.TaskID)
}

// Template returns empty entries for the lead and team of t.
func Template(t task.Task) TaskMetrics {
	m := TaskMetrics{TaskID: t.ID, Members: []Entry{}}
	if t.Lead != "" {
		m.Members = append(m.Members, Entry{Name: t.Lead, Role: RoleLead})
	}
	for _, name := range t.Team {
		m.Members = append(m.Members, Entry{Name: name, Role: RoleTeam})
	}
	return m
}

// RoleOf returns the role name has on t.
func RoleOf(t task.Task, name string) Role {
	if name != "" && name == t.Lead {
		return RoleLead
	}
	return RoleTeam
}

var whitespace = regexp.MustCompile(`\s+`)

// RowKey is the stored identifier of a member's entry on a task.
func RowKey(taskID, name string) string {
	return taskID + "-" + whitespace.ReplaceAllString(name, "-")
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// encode builds the stored row of e on t.
func encode(s sheet.Scheme, t task.Task, e Entry) sheet.Row {
	values := map[string]any{
		FieldKey:      RowKey(t.ID, e.Name),
		FieldEmployee: e.Name,
		FieldProject:  t.ProjectName,
		FieldTaskType: t.Type,
		FieldSubType:  t.SubType,
		FieldUnits:    e.Units,
		FieldErrors:   e.Errors,
		FieldPassRate: e.PassRate,
	}
	row := sheet.Row{ID: e.RowID, Cells: make([]sheet.Cell, 0, len(values))}
	for _, f := range Fields() {
		col, ok := s.Column(f)
		if !ok {
			continue
		}
		row.Cells = append(row.Cells, sheet.Cell{ColumnID: col, Value: values[f]})
	}
	return row
}

// record is a decoded metrics row.
type record struct {
	rowID    int64
	employee string
	project  string
	taskType string
	subType  string
	units    int
	errors   int
}

func decode(s sheet.Scheme, row sheet.Row) record {
	get := func(field string) any {
		col, ok := s.Column(field)
		if !ok {
			return nil
		}
		v, _ := row.Value(col)
		return v
	}
	return record{
		rowID:    row.ID,
		employee: sheet.Text(get(FieldEmployee)),
		project:  sheet.Text(get(FieldProject)),
		taskType: sheet.Text(get(FieldTaskType)),
		subType:  sheet.Text(get(FieldSubType)),
		units:    sheet.Int(get(FieldUnits)),
		errors:   sheet.Int(get(FieldErrors)),
	}
}

func (r record) matches(t task.Task) bool {
	return r.project == t.ProjectName && r.taskType == t.Type && r.subType == t.SubType
}
