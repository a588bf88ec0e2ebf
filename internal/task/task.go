// Package task defines the canonical build request entity and its lifecycle.
package task

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// DateLayout is the ISO 8601 date-only layout used for start and end dates.
const DateLayout = "2006-01-02"

// IDPrefix prefixes every generated logical task identifier.
const IDPrefix = "TASK-"

// Priority is the urgency of a request.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// Priorities lists the known priorities from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// ParsePriority matches s case-insensitively against the known priorities.
func ParsePriority(s string) (Priority, bool) {
	for _, p := range Priorities {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, true
		}
	}
	return "", false
}

// Status is a position in the request lifecycle.
type Status string

const (
	StatusPendingAllocation Status = "Pending Allocation"
	StatusAssigned          Status = "Assigned"
	StatusInProgress        Status = "In Progress"
	StatusInValidation      Status = "In Validation"
	StatusCompleted         Status = "Completed"
	StatusOnHold            Status = "On Hold"
	StatusCancelled         Status = "Cancelled"
)

// Lifecycle is the ordered list of statuses. Transitions between them are not
// enforced.
var Lifecycle = []Status{
	StatusPendingAllocation,
	StatusAssigned,
	StatusInProgress,
	StatusInValidation,
	StatusCompleted,
	StatusOnHold,
	StatusCancelled,
}

// Terminal reports whether s ends the lifecycle (Completed or Cancelled).
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ParseStatus matches s case-insensitively against the lifecycle.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Lifecycle {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, true
		}
	}
	return "", false
}

// Task is a single build request.
type Task struct {
	// ID is the application-generated logical identifier.
	ID string `json:"id"`

	// RowID is the store-assigned row identifier. Zero until persisted.
	RowID int64 `json:"rowId,omitempty"`

	Type          string   `json:"taskType"`
	SubType       string   `json:"taskSubType,omitempty"`
	Sponsor       string   `json:"sponsor"`
	ProjectName   string   `json:"projectName"`
	Priority      Priority `json:"priority"`
	EDCSystem     string   `json:"edcSystem"`
	Integrations  string   `json:"integrations,omitempty"`
	Description   string   `json:"description"`
	StartDate     string   `json:"startDate"`
	EndDate       string   `json:"endDate"`
	DocReferences string   `json:"docReferences,omitempty"`

	// ScopedHours are the hours for the primary (build) discipline.
	ScopedHours int `json:"scopedHours"`
	// SecondaryHours are the hours for the secondary discipline.
	SecondaryHours int `json:"secondaryHours"`

	Status        Status   `json:"status"`
	Lead          string   `json:"lead,omitempty"`
	SecondaryLead string   `json:"secondaryLead,omitempty"`
	Team          []string `json:"team"`

	Requestor      string `json:"requestor,omitempty"`
	RequestorEmail string `json:"requestorEmail,omitempty"`
	RequestorID    string `json:"requestorId,omitempty"`
}

// Involves reports whether name is the lead, the secondary lead or a team
// member of t.
func (t Task) Involves(name string) bool {
	if name == "" {
		return false
	}
	if t.Lead == name || t.SecondaryLead == name {
		return true
	}
	for _, m := range t.Team {
		if m == name {
			return true
		}
	}
	return false
}

// Start parses StartDate.
func (t Task) Start() (time.Time, error) {
	return ParseDate(t.StartDate)
}

// End parses EndDate.
func (t Task) End() (time.Time, error) {
	return ParseDate(t.EndDate)
}

// ParseDate parses an ISO 8601 date. A trailing time component, as some
// stores return for date columns, is ignored.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) && s[len(DateLayout)] == 'T' {
		s = s[:len(DateLayout)]
	}
	return time.Parse(DateLayout, s)
}

// NewID generates a logical task identifier.
func NewID() string {
	return IDPrefix + ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// TeamMember is a person eligible for assignment.
type TeamMember struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	Role  string `json:"role" yaml:"role"`
}

// Requestor is the provenance of a request.
type Requestor struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

// RequestorIDPrefix prefixes every generated requestor identifier.
const RequestorIDPrefix = "REQ-"

// NewRequestorID generates a requestor identifier.
func NewRequestorID() string {
	return RequestorIDPrefix + ulid.MustNew(ulid.Now(), rand.Reader).String()
}
