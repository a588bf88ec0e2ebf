// Package allocation holds the advisory rules used when assigning people to
// tasks: role eligibility, date-range availability and reporting hours.
package allocation

import (
	"time"

	"buildboard/internal/task"
)

// Role labels seeded into a new roster.
const (
	RoleDirector     = "Director"
	RoleBuildManager = "Build Manager"
	RoleBuilder      = "Builder"
)

// Eligible returns the members whose role exactly matches one of roles.
func Eligible(members []task.TeamMember, roles ...string) []task.TeamMember {
	out := make([]task.TeamMember, 0, len(members))
	for _, m := range members {
		for _, r := range roles {
			if m.Role == r {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether a and b share at least one day.
func Overlaps(a, b DateRange) bool {
	return !a.Start.After(b.End) && !b.Start.After(a.End)
}

// RangeOf returns the date range of t. ok is false when either date does not
// parse.
func RangeOf(t task.Task) (r DateRange, ok bool) {
	start, err := t.Start()
	if err != nil {
		return DateRange{}, false
	}
	end, err := t.End()
	if err != nil {
		return DateRange{}, false
	}
	return DateRange{Start: start, End: end}, true
}

// IsActive reports whether t still occupies its assignees.
func IsActive(t task.Task) bool {
	return !t.Status.Terminal()
}

// Availability is the advisory verdict for one member against one task.
type Availability struct {
	Member    task.TeamMember `json:"member"`
	Available bool            `json:"available"`
	Conflicts []task.Task     `json:"conflicts"`
}

// Conflicts returns the active tasks other than candidate that involve name
// and overlap the candidate's dates. Tasks without parseable dates never
// conflict, and a candidate without parseable dates conflicts with nothing.
func Conflicts(name string, candidate task.Task, tasks []task.Task) []task.Task {
	out := []task.Task{}
	want, ok := RangeOf(candidate)
	if !ok {
		return out
	}
	for _, t := range tasks {
		if candidate.ID != "" && t.ID == candidate.ID {
			continue
		}
		if !IsActive(t) || !t.Involves(name) {
			continue
		}
		r, ok := RangeOf(t)
		if !ok {
			continue
		}
		if Overlaps(want, r) {
			out = append(out, t)
		}
	}
	return out
}

// IsAvailable reports whether none of name's active tasks overlaps candidate.
// The verdict is advisory; allocation never checks it.
func IsAvailable(name string, candidate task.Task, tasks []task.Task) bool {
	return len(Conflicts(name, candidate, tasks)) == 0
}

// Assess computes availability for every member of pool, in pool order.
func Assess(candidate task.Task, pool []task.TeamMember, tasks []task.Task) []Availability {
	out := make([]Availability, 0, len(pool))
	for _, m := range pool {
		c := Conflicts(m.Name, candidate, tasks)
		out = append(out, Availability{Member: m, Available: len(c) == 0, Conflicts: c})
	}
	return out
}
