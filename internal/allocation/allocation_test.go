package allocation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buildboard/internal/task"
)

func day(s string) time.Time {
	d, err := task.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func span(start, end string) DateRange {
	return DateRange{Start: day(start), End: day(end)}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b DateRange
		want bool
	}{
		{"shared boundary day", span("2024-01-01", "2024-01-10"), span("2024-01-10", "2024-01-20"), true},
		{"adjacent days", span("2024-01-01", "2024-01-09"), span("2024-01-10", "2024-01-20"), false},
		{"contained", span("2024-01-01", "2024-01-31"), span("2024-01-10", "2024-01-12"), true},
		{"single day ranges", span("2024-02-02", "2024-02-02"), span("2024-02-02", "2024-02-02"), true},
		{"b before a", span("2024-03-10", "2024-03-20"), span("2024-03-01", "2024-03-09"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.a, tc.b))
			assert.Equal(t, tc.want, Overlaps(tc.b, tc.a))
		})
	}
}

func TestEligible(t *testing.T) {
	members := []task.TeamMember{
		{Name: "Ann", Role: RoleBuilder},
		{Name: "Bo", Role: RoleDirector},
		{Name: "Cy", Role: "builder"},
		{Name: "Di", Role: RoleBuildManager},
	}

	got := Eligible(members, RoleBuilder)
	require.Len(t, got, 1)
	assert.Equal(t, "Ann", got[0].Name)

	got = Eligible(members, RoleBuilder, RoleBuildManager)
	assert.Len(t, got, 2)

	assert.Empty(t, Eligible(members))
}

func TestIsAvailable(t *testing.T) {
	candidate := task.Task{ID: "TASK-NEW", StartDate: "2024-01-06", EndDate: "2024-01-10"}
	existing := task.Task{
		ID: "TASK-1", StartDate: "2024-01-01", EndDate: "2024-01-05",
		Status: task.StatusInProgress, Lead: "Ann",
	}

	assert.True(t, IsAvailable("Ann", candidate, []task.Task{existing}))
	assert.True(t, IsAvailable("Nobody", candidate, []task.Task{existing}))
	assert.True(t, IsAvailable("Ann", candidate, nil))

	existing.EndDate = "2024-01-06"
	assert.False(t, IsAvailable("Ann", candidate, []task.Task{existing}))
}

func TestIsAvailable_IgnoresTerminalTasks(t *testing.T) {
	candidate := task.Task{ID: "TASK-NEW", StartDate: "2024-01-01", EndDate: "2024-01-10"}
	for _, st := range []task.Status{task.StatusCompleted, task.StatusCancelled} {
		other := task.Task{ID: "TASK-1", StartDate: "2024-01-01", EndDate: "2024-01-10", Status: st, Team: []string{"Ann"}}
		assert.True(t, IsAvailable("Ann", candidate, []task.Task{other}), st)
	}
	onHold := task.Task{ID: "TASK-2", StartDate: "2024-01-01", EndDate: "2024-01-10", Status: task.StatusOnHold, Team: []string{"Ann"}}
	assert.False(t, IsAvailable("Ann", candidate, []task.Task{onHold}))
}

func TestIsAvailable_SkipsCandidateItself(t *testing.T) {
	candidate := task.Task{ID: "TASK-1", StartDate: "2024-01-01", EndDate: "2024-01-10", Status: task.StatusAssigned, Lead: "Ann"}
	assert.True(t, IsAvailable("Ann", candidate, []task.Task{candidate}))
}

func TestIsAvailable_UnparseableDates(t *testing.T) {
	good := task.Task{ID: "TASK-1", StartDate: "2024-01-01", EndDate: "2024-01-10", Status: task.StatusAssigned, Lead: "Ann"}
	bad := task.Task{ID: "TASK-2", StartDate: "soon", EndDate: "", Status: task.StatusAssigned, Lead: "Ann"}

	assert.True(t, IsAvailable("Ann", bad, []task.Task{good}))
	assert.True(t, IsAvailable("Ann", task.Task{ID: "TASK-3", StartDate: "2024-01-01", EndDate: "2024-01-02"}, []task.Task{bad}))
}

func TestAssess(t *testing.T) {
	candidate := task.Task{ID: "TASK-NEW", StartDate: "2024-01-06", EndDate: "2024-01-10"}
	busy := task.Task{ID: "TASK-1", StartDate: "2024-01-08", EndDate: "2024-01-12", Status: task.StatusAssigned, SecondaryLead: "Bo"}
	pool := []task.TeamMember{{Name: "Ann", Role: RoleBuilder}, {Name: "Bo", Role: RoleBuilder}}

	got := Assess(candidate, pool, []task.Task{busy})
	require.Len(t, got, 2)
	assert.True(t, got[0].Available)
	assert.Empty(t, got[0].Conflicts)
	assert.False(t, got[1].Available)
	require.Len(t, got[1].Conflicts, 1)
	assert.Equal(t, "TASK-1", got[1].Conflicts[0].ID)
}

func TestSplitHours(t *testing.T) {
	got := SplitHours(100, "Lead", []string{"Support"})
	assert.Equal(t, []Share{
		{Name: "Lead", Role: ShareLead, Hours: 55},
		{Name: "Support", Role: ShareSupport, Hours: 50},
	}, got)
}

func TestSplitHours_Edges(t *testing.T) {
	assert.Equal(t, []Share{{Name: "Solo", Role: ShareLead, Hours: 44}}, SplitHours(40, "Solo", nil))
	assert.Equal(t, []Share{
		{Name: "A", Role: ShareSupport, Hours: 15},
		{Name: "B", Role: ShareSupport, Hours: 15},
	}, SplitHours(30, "", []string{"A", "B"}))
	assert.Empty(t, SplitHours(10, "", nil))

	// 10/3 = 3.33; lead 3.67 rounds to 4
	got := SplitHours(10, "L", []string{"A", "B"})
	assert.Equal(t, 4, got[0].Hours)
	assert.Equal(t, 3, got[1].Hours)
}

func TestTaskShares(t *testing.T) {
	tk := task.Task{
		ScopedHours: 100, SecondaryHours: 12,
		Lead: "Ann", SecondaryLead: "Bo", Team: []string{"Cy"},
	}
	got := TaskShares(tk)
	assert.Equal(t, []Share{
		{Name: "Ann", Role: ShareLead, Hours: 55},
		{Name: "Cy", Role: ShareSupport, Hours: 50},
		{Name: "Bo", Role: ShareSecondaryLead, Hours: 12},
	}, got)
	assert.Equal(t, 100, tk.ScopedHours)
}

func TestHoursFor(t *testing.T) {
	tasks := []task.Task{
		{ScopedHours: 100, Lead: "Ann", Team: []string{"Cy"}},
		{ScopedHours: 20, Lead: "Cy", Team: []string{"Ann"}},
	}
	assert.Equal(t, 55+10, HoursFor("Ann", tasks))
	assert.Equal(t, 50+11, HoursFor("Cy", tasks))
	assert.Equal(t, 0, HoursFor("Nobody", tasks))
}
