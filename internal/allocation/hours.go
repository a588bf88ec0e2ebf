package allocation

import (
	"math"

	"buildboard/internal/task"
)

// LeadPremium multiplies the lead's share of scoped hours in reports.
const LeadPremium = 1.1

// Share roles.
const (
	ShareLead          = "Lead"
	ShareSupport       = "Support"
	ShareSecondaryLead = "Secondary Lead"
)

// Share is one participant's reporting hours on a task.
type Share struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Hours int    `json:"hours"`
}

// SplitHours divides total among lead and support. Every participant
// nominally gets total/(N+1); the lead's share is multiplied by LeadPremium.
// Shares are rounded half away from zero, so they need not sum to total.
// With no lead, support members split total evenly.
func SplitHours(total int, lead string, support []string) []Share {
	n := len(support)
	if lead != "" {
		n++
	}
	if n == 0 {
		return []Share{}
	}
	each := float64(total) / float64(n)

	shares := make([]Share, 0, n)
	if lead != "" {
		shares = append(shares, Share{Name: lead, Role: ShareLead, Hours: int(math.Round(each * LeadPremium))})
	}
	for _, name := range support {
		shares = append(shares, Share{Name: name, Role: ShareSupport, Hours: int(math.Round(each))})
	}
	return shares
}

// TaskShares derives the reporting hours of t. Scoped hours are split across
// the lead and team; secondary hours go to the secondary lead whole. Stored
// hours are not changed.
func TaskShares(t task.Task) []Share {
	shares := SplitHours(t.ScopedHours, t.Lead, t.Team)
	if t.SecondaryLead != "" && t.SecondaryHours > 0 {
		shares = append(shares, Share{Name: t.SecondaryLead, Role: ShareSecondaryLead, Hours: t.SecondaryHours})
	}
	return shares
}

// HoursFor sums name's shares across tasks.
func HoursFor(name string, tasks []task.Task) int {
	total := 0
	for _, t := range tasks {
		for _, s := range TaskShares(t) {
			if s.Name == name {
				total += s.Hours
			}
		}
	}
	return total
}
