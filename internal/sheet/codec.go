package sheet

import (
	"strconv"

	"buildboard/internal/task"
)

// Task field names used as scheme keys.
const (
	FieldID             = "task_id"
	FieldType           = "task_type"
	FieldSubType        = "task_sub_type"
	FieldSponsor        = "sponsor"
	FieldProjectName    = "project_name"
	FieldPriority       = "priority"
	FieldEDCSystem      = "edc_system"
	FieldIntegrations   = "integrations"
	FieldDescription    = "description"
	FieldStartDate      = "start_date"
	FieldEndDate        = "end_date"
	FieldScopedHours    = "scoped_hours"
	FieldSecondaryHours = "secondary_hours"
	FieldStatus         = "status"
	FieldLead           = "lead"
	FieldSecondaryLead  = "secondary_lead"
	FieldTeam           = "team"
	FieldRequestor      = "requestor"
	FieldRequestorEmail = "requestor_email"
	FieldRequestorID    = "requestor_id"
	FieldDocReferences  = "doc_references"
)

type field struct {
	name string
	get  func(t *task.Task) string
	set  func(t *task.Task, v any)
}

func textField(name string, p func(t *task.Task) *string) field {
	return field{
		name: name,
		get:  func(t *task.Task) string { return *p(t) },
		set:  func(t *task.Task, v any) { *p(t) = Text(v) },
	}
}

func intField(name string, p func(t *task.Task) *int) field {
	return field{
		name: name,
		get:  func(t *task.Task) string { return strconv.Itoa(*p(t)) },
		set:  func(t *task.Task, v any) { *p(t) = Int(v) },
	}
}

// taskFields is the fixed encoding order.
var taskFields = []field{
	textField(FieldID, func(t *task.Task) *string { return &t.ID }),
	textField(FieldType, func(t *task.Task) *string { return &t.Type }),
	textField(FieldSubType, func(t *task.Task) *string { return &t.SubType }),
	textField(FieldSponsor, func(t *task.Task) *string { return &t.Sponsor }),
	textField(FieldProjectName, func(t *task.Task) *string { return &t.ProjectName }),
	{
		name: FieldPriority,
		get:  func(t *task.Task) string { return string(t.Priority) },
		set:  func(t *task.Task, v any) { t.Priority = task.Priority(Text(v)) },
	},
	textField(FieldEDCSystem, func(t *task.Task) *string { return &t.EDCSystem }),
	textField(FieldIntegrations, func(t *task.Task) *string { return &t.Integrations }),
	textField(FieldDescription, func(t *task.Task) *string { return &t.Description }),
	textField(FieldStartDate, func(t *task.Task) *string { return &t.StartDate }),
	textField(FieldEndDate, func(t *task.Task) *string { return &t.EndDate }),
	intField(FieldScopedHours, func(t *task.Task) *int { return &t.ScopedHours }),
	intField(FieldSecondaryHours, func(t *task.Task) *int { return &t.SecondaryHours }),
	{
		name: FieldStatus,
		get:  func(t *task.Task) string { return string(t.Status) },
		set:  func(t *task.Task, v any) { t.Status = task.Status(Text(v)) },
	},
	textField(FieldLead, func(t *task.Task) *string { return &t.Lead }),
	textField(FieldSecondaryLead, func(t *task.Task) *string { return &t.SecondaryLead }),
	{
		name: FieldTeam,
		get:  func(t *task.Task) string { return JoinTeam(t.Team) },
		set:  func(t *task.Task, v any) { t.Team = TeamValue(v) },
	},
	textField(FieldRequestor, func(t *task.Task) *string { return &t.Requestor }),
	textField(FieldRequestorEmail, func(t *task.Task) *string { return &t.RequestorEmail }),
	textField(FieldRequestorID, func(t *task.Task) *string { return &t.RequestorID }),
	textField(FieldDocReferences, func(t *task.Task) *string { return &t.DocReferences }),
}

// TaskFields returns the task field names in encoding order.
func TaskFields() []string {
	names := make([]string, len(taskFields))
	for i, f := range taskFields {
		names[i] = f.name
	}
	return names
}

// Codec converts tasks to rows and back under one scheme. Fields the scheme
// does not map are dropped on encode and left at their zero value on decode.
type Codec struct {
	scheme Scheme
}

// NewCodec validates s and returns a codec for it.
func NewCodec(s Scheme) (*Codec, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Codec{scheme: s}, nil
}

// Scheme returns the codec's scheme.
func (c *Codec) Scheme() Scheme {
	return c.scheme
}

// Encode renders t as a row. The row carries t.RowID, which is omitted on the
// wire when zero.
func (c *Codec) Encode(t task.Task) Row {
	row := Row{ID: t.RowID, Cells: make([]Cell, 0, len(taskFields))}
	for _, f := range taskFields {
		col, ok := c.scheme.Column(f.name)
		if !ok {
			continue
		}
		row.Cells = append(row.Cells, Cell{ColumnID: col, Value: f.get(&t)})
	}
	return row
}

// Decode reads a task from row, substituting defaults for absent or empty
// cells.
func (c *Codec) Decode(row Row) task.Task {
	t := task.Task{RowID: row.ID, Team: []string{}}
	for _, f := range taskFields {
		col, ok := c.scheme.Column(f.name)
		if !ok {
			continue
		}
		v, _ := row.Value(col)
		f.set(&t, v)
	}
	return t
}
