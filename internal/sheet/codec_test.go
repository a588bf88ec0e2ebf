package sheet

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buildboard/internal/task"
)

func testScheme() Scheme {
	return PositionalScheme("test", TaskFields())
}

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(testScheme())
	require.NoError(t, err)
	return c
}

func fullTask() task.Task {
	return task.Task{
		ID:             "TASK-01HZX",
		RowID:          42,
		Type:           "Study Build",
		SubType:        "Amendment",
		Sponsor:        "Acme Pharma",
		ProjectName:    "ACM-301",
		Priority:       task.PriorityHigh,
		EDCSystem:      "Rave",
		Integrations:   "IxRS",
		Description:    "Build the eCRF",
		StartDate:      "2024-01-01",
		EndDate:        "2024-01-10",
		ScopedHours:    100,
		SecondaryHours: 12,
		Status:         task.StatusInProgress,
		Lead:           "Ann Lee",
		SecondaryLead:  "Bo Chan",
		Team:           []string{"Cy Diaz", "Di Evans"},
		Requestor:      "Pat Quinn",
		RequestorEmail: "pat@example.com",
		RequestorID:    "REQ-1",
		DocReferences:  "SharePoint/ACM-301",
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	c := newTestCodec(t)

	for name, tk := range map[string]task.Task{
		"full":       fullTask(),
		"empty team": {ID: "TASK-2", Team: []string{}},
		"one member": {ID: "TASK-3", Team: []string{"Solo"}, ScopedHours: 7},
	} {
		t.Run(name, func(t *testing.T) {
			got := c.Decode(c.Encode(tk))
			assert.Equal(t, tk, got)
		})
	}
}

func TestCodec_RoundTripOverJSON(t *testing.T) {
	c := newTestCodec(t)
	tk := fullTask()

	data, err := json.Marshal(c.Encode(tk))
	require.NoError(t, err)

	var row Row
	require.NoError(t, json.Unmarshal(data, &row))
	assert.Equal(t, tk, c.Decode(row))
}

func TestCodec_EncodeCoercesToText(t *testing.T) {
	c := newTestCodec(t)
	row := c.Encode(fullTask())

	hours, _ := row.Value(c.Scheme().Columns[FieldScopedHours])
	assert.Equal(t, "100", hours)

	team, _ := row.Value(c.Scheme().Columns[FieldTeam])
	assert.Equal(t, "Cy Diaz, Di Evans", team)

	lead, _ := row.Value(c.Scheme().Columns[FieldLead])
	assert.Equal(t, "Ann Lee", lead)
}

func TestCodec_EncodeOmitsRowIDForNewTasks(t *testing.T) {
	c := newTestCodec(t)
	tk := fullTask()
	tk.RowID = 0

	data, err := json.Marshal(c.Encode(tk))
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"id"`)
}

func TestCodec_DecodeMissingNumericIsZero(t *testing.T) {
	c := newTestCodec(t)
	row := c.Encode(fullTask())

	var cells []Cell
	for _, cell := range row.Cells {
		if cell.ColumnID != c.Scheme().Columns[FieldScopedHours] {
			cells = append(cells, cell)
		}
	}
	row.Cells = cells

	got := c.Decode(row)
	assert.Equal(t, 0, got.ScopedHours)
	assert.Equal(t, 12, got.SecondaryHours)
}

func TestCodec_DecodeNumericTolerance(t *testing.T) {
	c := newTestCodec(t)
	col := c.Scheme().Columns[FieldScopedHours]

	cases := []struct {
		value any
		want  int
	}{
		{"abc", 0},
		{"", 0},
		{nil, 0},
		{"40h", 40},
		{"12.7", 12},
		{float64(35), 35},
		{json.Number("8"), 8},
	}
	for _, tc := range cases {
		got := c.Decode(Row{Cells: []Cell{{ColumnID: col, Value: tc.value}}})
		assert.Equal(t, tc.want, got.ScopedHours, "value %#v", tc.value)
	}
}

func TestCodec_DecodeEmptyTeam(t *testing.T) {
	c := newTestCodec(t)
	col := c.Scheme().Columns[FieldTeam]

	got := c.Decode(Row{Cells: []Cell{{ColumnID: col, Value: ""}}})
	assert.NotNil(t, got.Team)
	assert.Empty(t, got.Team)

	got = c.Decode(Row{})
	assert.NotNil(t, got.Team)
	assert.Empty(t, got.Team)
}

func TestCodec_DecodeTeamFromList(t *testing.T) {
	c := newTestCodec(t)
	col := c.Scheme().Columns[FieldTeam]

	got := c.Decode(Row{Cells: []Cell{{ColumnID: col, Value: []any{"Ann", "", "Bo"}}}})
	assert.Equal(t, []string{"Ann", "Bo"}, got.Team)
}

func TestCodec_UnmappedFieldsAreDropped(t *testing.T) {
	s := Scheme{Name: "legacy", Columns: map[string]int64{
		FieldID:     7329347793014660,
		FieldStatus: 4796073002618756,
	}}
	c, err := NewCodec(s)
	require.NoError(t, err)

	tk := fullTask()
	row := c.Encode(tk)
	assert.Len(t, row.Cells, 2)

	got := c.Decode(row)
	assert.Equal(t, tk.ID, got.ID)
	assert.Equal(t, tk.Status, got.Status)
	assert.Empty(t, got.Sponsor)
	assert.Empty(t, got.Team)
}

func TestNewCodec_RejectsReusedColumns(t *testing.T) {
	s := Scheme{Name: "broken", Columns: map[string]int64{
		FieldID:        7329347793014660,
		FieldRequestor: 7329347793014660,
	}}
	_, err := NewCodec(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requestor, task_id")
}
