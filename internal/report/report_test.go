package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buildboard/internal/storage"
	"buildboard/internal/task"
)

// Wednesday 2024-01-10, 15:00 local.
var now = time.Date(2024, time.January, 10, 15, 0, 0, 0, time.Local)

func ids(tasks []task.Task) []string {
	out := []string{}
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func fixture() []task.Task {
	return []task.Task{
		{ID: "late", Status: task.StatusInProgress, EDCSystem: "Rave", StartDate: "2024-01-01", EndDate: "2024-01-09", ScopedHours: 100, Lead: "Ann", Team: []string{"Cy"}},
		{ID: "done-late", Status: task.StatusCompleted, EDCSystem: "Rave", StartDate: "2024-01-01", EndDate: "2024-01-02", Lead: "Ann", Team: []string{}},
		{ID: "today", Status: task.StatusAssigned, EDCSystem: "Viedoc", StartDate: "2024-01-05", EndDate: "2024-01-10", ScopedHours: 20, Lead: "Cy", Team: []string{}},
		{ID: "sunday", Status: task.StatusPendingAllocation, EDCSystem: "Rave", StartDate: "2024-01-08", EndDate: "2024-01-14", Team: []string{}},
		{ID: "next-week", Status: task.StatusOnHold, EDCSystem: "Medrio", StartDate: "2024-01-08", EndDate: "2024-01-20", Team: []string{"Ann"}},
		{ID: "far", Status: task.StatusInValidation, StartDate: "2024-02-01", EndDate: "2024-03-01", Team: []string{}},
		{ID: "undated", Status: "Blocked", StartDate: "", EndDate: "tbd", Team: []string{}},
	}
}

func TestToday(t *testing.T) {
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), Today(now))
	assert.Equal(t, time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC), EndOfWeek(now))

	sunday := time.Date(2024, 1, 14, 9, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC), EndOfWeek(sunday))
}

func TestStatusCounts(t *testing.T) {
	got := StatusCounts(fixture())
	require.Len(t, got, len(task.Lifecycle)+1)
	assert.Equal(t, StatusCount{Status: task.StatusPendingAllocation, Count: 1}, got[0])
	assert.Equal(t, StatusCount{Status: task.StatusCancelled, Count: 0}, got[6])
	assert.Equal(t, StatusCount{Status: "Blocked", Count: 1}, got[7])
}

func TestSystemCounts(t *testing.T) {
	got := SystemCounts(fixture(), []string{"Rave", "Viedoc", "Veeva"})
	assert.Equal(t, []SystemCount{{"Rave", 3}, {"Viedoc", 1}, {"Veeva", 0}}, got)
}

func TestDeliverables(t *testing.T) {
	tasks := fixture()
	assert.Equal(t, []string{"late"}, ids(Overdue(tasks, now)))
	assert.Equal(t, []string{"today", "sunday"}, ids(DueThisWeek(tasks, now)))
	assert.Equal(t, []string{"today", "sunday", "next-week"}, ids(Upcoming(tasks, now, UpcomingWindow)))
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{Total: 7, Pending: 1, InProgress: 3, Overdue: 1, DueThisWeek: 2}, Summarize(fixture(), now))
}

func TestResourcesAndIdle(t *testing.T) {
	members := []task.TeamMember{{Name: "Ann"}, {Name: "Cy"}, {Name: "Di"}}
	got := Resources(fixture(), members)

	require.Len(t, got, 3)
	assert.Equal(t, 3, got[0].Tasks)
	assert.Equal(t, 55, got[0].Hours)
	assert.Equal(t, 2, got[1].Tasks)
	assert.Equal(t, 50+22, got[1].Hours)
	assert.Equal(t, 0, got[2].Tasks)

	assert.Equal(t, []task.TeamMember{{Name: "Di"}}, Idle(fixture(), members))
}

func TestFilter(t *testing.T) {
	tasks := fixture()
	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"zero", Filter{}, ids(tasks)},
		{"system", Filter{EDCSystem: "Rave"}, []string{"late", "done-late", "sunday"}},
		{"member", Filter{Member: "Ann"}, []string{"late", "done-late", "next-week"}},
		{"status", Filter{Status: task.StatusOnHold}, []string{"next-week"}},
		{"pending card", Filter{Card: CardPending}, []string{"sunday"}},
		{"in progress card", Filter{Card: CardInProgress}, []string{"late", "today", "far"}},
		{"overdue card", Filter{Card: CardOverdue}, []string{"late"}},
		{"combined", Filter{EDCSystem: "Rave", Card: CardDueThisWeek}, []string{"sunday"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(tc.filter.Apply(tasks, now)))
		})
	}
}

func TestParseCard(t *testing.T) {
	c, err := ParseCard("")
	require.NoError(t, err)
	assert.Equal(t, CardAll, c)

	c, err = ParseCard("due-this-week")
	require.NoError(t, err)
	assert.Equal(t, CardDueThisWeek, c)

	_, err = ParseCard("late")
	assert.Error(t, err)
}

func TestTimeline(t *testing.T) {
	got := Timeline(fixture())
	require.Len(t, got, 6)

	order := []string{}
	for _, e := range got {
		order = append(order, e.Task.ID)
	}
	assert.Equal(t, []string{"done-late", "late", "today", "sunday", "next-week", "far"}, order)
	assert.Equal(t, 2, got[0].Days)
	assert.Equal(t, 9, got[1].Days)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	snap := Build(fixture(), []task.TeamMember{{Name: "Ann"}}, []string{"Rave"}, now)

	path, err := Export(ctx, store, snap, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, ExportPath(now, FormatCSV), path)

	data, err := store.Read(ctx, path)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(fixture())+1)
	assert.Equal(t, "Task ID", records[0][0])
	assert.Equal(t, "late", records[1][0])
	assert.Equal(t, "Cy", records[1][16])

	path, err = Export(ctx, store, snap, FormatJSON)
	require.NoError(t, err)
	data, err = store.Read(ctx, path)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, snap.Summary, decoded.Summary)
	assert.Len(t, decoded.Tasks, len(fixture()))

	_, err = Export(ctx, store, snap, "xlsx")
	assert.Error(t, err)
}
