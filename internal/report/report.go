// Package report derives dashboard and report figures from a task list.
// Nothing here is written back to the store.
package report

import (
	"slices"
	"time"

	"buildboard/internal/allocation"
	"buildboard/internal/task"
)

// UpcomingWindow is how far ahead Upcoming looks.
const UpcomingWindow = 14 * 24 * time.Hour

// Today returns the calendar date of now as a UTC midnight, comparable with
// task.ParseDate results.
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfWeek returns the coming Sunday. On a Sunday it is the next one.
func EndOfWeek(now time.Time) time.Time {
	today := Today(now)
	return today.AddDate(0, 0, 7-int(today.Weekday()))
}

// StatusCount is the number of tasks in one status.
type StatusCount struct {
	Status task.Status `json:"status"`
	Count  int         `json:"count"`
}

// StatusCounts counts tasks per status. Every lifecycle status appears, in
// lifecycle order; statuses outside the lifecycle follow in first-seen order.
func StatusCounts(tasks []task.Task) []StatusCount {
	counts := make(map[task.Status]int)
	var extra []task.Status
	for _, t := range tasks {
		if _, seen := counts[t.Status]; !seen && !slices.Contains(task.Lifecycle, t.Status) {
			extra = append(extra, t.Status)
		}
		counts[t.Status]++
	}

	out := make([]StatusCount, 0, len(task.Lifecycle)+len(extra))
	for _, s := range task.Lifecycle {
		out = append(out, StatusCount{Status: s, Count: counts[s]})
	}
	for _, s := range extra {
		out = append(out, StatusCount{Status: s, Count: counts[s]})
	}
	return out
}

// SystemCount is the number of tasks on one EDC system.
type SystemCount struct {
	System string `json:"system"`
	Count  int    `json:"count"`
}

// SystemCounts counts tasks per EDC system in the order of systems.
func SystemCounts(tasks []task.Task, systems []string) []SystemCount {
	out := make([]SystemCount, 0, len(systems))
	for _, s := range systems {
		n := 0
		for _, t := range tasks {
			if t.EDCSystem == s {
				n++
			}
		}
		out = append(out, SystemCount{System: s, Count: n})
	}
	return out
}

// Resource is one member's load.
type Resource struct {
	Member task.TeamMember `json:"member"`
	Tasks  int             `json:"tasks"`
	Hours  int             `json:"hours"`
}

// Resources reports, per member, the tasks involving them and their share of
// reporting hours.
func Resources(tasks []task.Task, members []task.TeamMember) []Resource {
	out := make([]Resource, 0, len(members))
	for _, m := range members {
		n := 0
		for _, t := range tasks {
			if t.Involves(m.Name) {
				n++
			}
		}
		out = append(out, Resource{Member: m, Tasks: n, Hours: allocation.HoursFor(m.Name, tasks)})
	}
	return out
}

// Idle returns the members involved in no task at all.
func Idle(tasks []task.Task, members []task.TeamMember) []task.TeamMember {
	out := []task.TeamMember{}
	for _, m := range members {
		busy := slices.ContainsFunc(tasks, func(t task.Task) bool { return t.Involves(m.Name) })
		if !busy {
			out = append(out, m)
		}
	}
	return out
}

// IsOverdue reports whether t ended before today and is still open.
func IsOverdue(t task.Task, now time.Time) bool {
	end, err := t.End()
	if err != nil {
		return false
	}
	return end.Before(Today(now)) && !t.Status.Terminal()
}

// IsDueThisWeek reports whether t ends between today and the coming Sunday.
func IsDueThisWeek(t task.Task, now time.Time) bool {
	end, err := t.End()
	if err != nil {
		return false
	}
	return !end.Before(Today(now)) && !end.After(EndOfWeek(now))
}

// IsInProgress reports whether t has been allocated and is not yet done.
func IsInProgress(t task.Task) bool {
	switch t.Status {
	case task.StatusAssigned, task.StatusInProgress, task.StatusInValidation:
		return true
	}
	return false
}

// Overdue returns the overdue tasks ordered by end date.
func Overdue(tasks []task.Task, now time.Time) []task.Task {
	return byEnd(filter(tasks, func(t task.Task) bool { return IsOverdue(t, now) }))
}

// DueThisWeek returns the tasks due by the coming Sunday ordered by end date.
func DueThisWeek(tasks []task.Task, now time.Time) []task.Task {
	return byEnd(filter(tasks, func(t task.Task) bool { return IsDueThisWeek(t, now) }))
}

// Upcoming returns the open tasks ending within window of today, ordered by
// end date.
func Upcoming(tasks []task.Task, now time.Time, window time.Duration) []task.Task {
	today := Today(now)
	limit := today.Add(window)
	return byEnd(filter(tasks, func(t task.Task) bool {
		end, err := t.End()
		if err != nil || t.Status.Terminal() {
			return false
		}
		return !end.Before(today) && !end.After(limit)
	}))
}

// Summary holds the dashboard card figures.
type Summary struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	InProgress  int `json:"inProgress"`
	Overdue     int `json:"overdue"`
	DueThisWeek int `json:"dueThisWeek"`
}

// Summarize computes the dashboard cards.
func Summarize(tasks []task.Task, now time.Time) Summary {
	s := Summary{Total: len(tasks)}
	for _, t := range tasks {
		if t.Status == task.StatusPendingAllocation {
			s.Pending++
		}
		if IsInProgress(t) {
			s.InProgress++
		}
		if IsOverdue(t, now) {
			s.Overdue++
		}
		if IsDueThisWeek(t, now) {
			s.DueThisWeek++
		}
	}
	return s
}

// TimelineEntry is one bar of a Gantt view.
type TimelineEntry struct {
	Task task.Task `json:"task"`
	Days int       `json:"days"`
}

// Timeline orders tasks with parseable dates by start then end date. Days
// counts both ends.
func Timeline(tasks []task.Task) []TimelineEntry {
	type dated struct {
		entry      TimelineEntry
		start, end time.Time
	}
	var rows []dated
	for _, t := range tasks {
		r, ok := allocation.RangeOf(t)
		if !ok {
			continue
		}
		days := int(r.End.Sub(r.Start).Hours()/24) + 1
		rows = append(rows, dated{entry: TimelineEntry{Task: t, Days: days}, start: r.Start, end: r.End})
	}
	slices.SortStableFunc(rows, func(a, b dated) int {
		if c := a.start.Compare(b.start); c != 0 {
			return c
		}
		return a.end.Compare(b.end)
	})

	out := make([]TimelineEntry, len(rows))
	for i, r := range rows {
		out[i] = r.entry
	}
	return out
}

func filter(tasks []task.Task, keep func(task.Task) bool) []task.Task {
	out := []task.Task{}
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func byEnd(tasks []task.Task) []task.Task {
	slices.SortStableFunc(tasks, func(a, b task.Task) int {
		ea, _ := a.End()
		eb, _ := b.End()
		return ea.Compare(eb)
	})
	return tasks
}
