package report

import (
	"fmt"
	"time"

	"buildboard/internal/task"
)

// Card selects one dashboard card.
type Card string

const (
	CardAll         Card = "all"
	CardPending     Card = "pending"
	CardInProgress  Card = "in-progress"
	CardOverdue     Card = "overdue"
	CardDueThisWeek Card = "due-this-week"
)

// Cards lists the dashboard cards.
var Cards = []Card{CardAll, CardPending, CardInProgress, CardOverdue, CardDueThisWeek}

// ParseCard validates a card name. The empty string selects all tasks.
func ParseCard(s string) (Card, error) {
	if s == "" {
		return CardAll, nil
	}
	for _, c := range Cards {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown card: %s", s)
}

// Filter narrows a task list the way the dashboard does. Zero fields do not
// filter.
type Filter struct {
	EDCSystem string
	Member    string
	Status    task.Status
	Card      Card
}

// Match reports whether t passes every set criterion.
func (f Filter) Match(t task.Task, now time.Time) bool {
	if f.EDCSystem != "" && t.EDCSystem != f.EDCSystem {
		return false
	}
	if f.Member != "" && !t.Involves(f.Member) {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	switch f.Card {
	case CardPending:
		return t.Status == task.StatusPendingAllocation
	case CardInProgress:
		return IsInProgress(t)
	case CardOverdue:
		return IsOverdue(t, now)
	case CardDueThisWeek:
		return IsDueThisWeek(t, now)
	}
	return true
}

// Apply returns the matching tasks in their original order.
func (f Filter) Apply(tasks []task.Task, now time.Time) []task.Task {
	return filter(tasks, func(t task.Task) bool { return f.Match(t, now) })
}
