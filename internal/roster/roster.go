// Package roster manages the team, reference lists and saved requestors that
// the dashboard offers for selection.
package roster

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"buildboard/internal/allocation"
	"buildboard/internal/task"
)

// DefaultEDCSystems seeds a new roster.
var DefaultEDCSystems = []string{"Rave", "Viedoc", "Veeva", "Medrio", "iMednet", "OpenClinica"}

// ErrRequestorNotFound is returned when removing an unknown requestor.
var ErrRequestorNotFound = errors.New("requestor not found")

// Data is the on-disk form of a roster.
type Data struct {
	TeamMembers  []task.TeamMember `yaml:"team_members" json:"teamMembers"`
	EDCSystems   []string          `yaml:"edc_systems" json:"edcSystems"`
	Statuses     []string          `yaml:"statuses" json:"statuses"`
	LeadRoles    []string          `yaml:"lead_roles" json:"leadRoles"`
	SupportRoles []string          `yaml:"support_roles" json:"supportRoles"`
	Requestors   []task.Requestor  `yaml:"requestors" json:"requestors"`
}

// Defaults returns the data of a new roster.
func Defaults() Data {
	statuses := make([]string, len(task.Lifecycle))
	for i, s := range task.Lifecycle {
		statuses[i] = string(s)
	}
	return Data{
		TeamMembers:  []task.TeamMember{},
		EDCSystems:   slices.Clone(DefaultEDCSystems),
		Statuses:     statuses,
		LeadRoles:    []string{allocation.RoleBuilder},
		SupportRoles: []string{allocation.RoleBuilder},
		Requestors:   []task.Requestor{},
	}
}

// fill replaces missing lists with defaults.
func (d *Data) fill() {
	def := Defaults()
	if d.TeamMembers == nil {
		d.TeamMembers = def.TeamMembers
	}
	if len(d.EDCSystems) == 0 {
		d.EDCSystems = def.EDCSystems
	}
	if len(d.Statuses) == 0 {
		d.Statuses = def.Statuses
	}
	if len(d.LeadRoles) == 0 {
		d.LeadRoles = def.LeadRoles
	}
	if len(d.SupportRoles) == 0 {
		d.SupportRoles = def.SupportRoles
	}
	if d.Requestors == nil {
		d.Requestors = def.Requestors
	}
}

func (d Data) clone() Data {
	return Data{
		TeamMembers:  slices.Clone(d.TeamMembers),
		EDCSystems:   slices.Clone(d.EDCSystems),
		Statuses:     slices.Clone(d.Statuses),
		LeadRoles:    slices.Clone(d.LeadRoles),
		SupportRoles: slices.Clone(d.SupportRoles),
		Requestors:   slices.Clone(d.Requestors),
	}
}

// Roster is a file-backed Data. It is safe for concurrent use.
type Roster struct {
	path  string
	newID func() string
	mu    sync.RWMutex
	data  Data
}

// Load reads the roster at path. A missing file yields the defaults; it is
// created on the first save.
func Load(path string) (*Roster, error) {
	r := &Roster{path: path, newID: task.NewRequestorID}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload rereads the file.
func (r *Roster) Reload() error {
	data, err := readFile(r.path)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.data = data
	r.mu.Unlock()
	return nil
}

func readFile(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return Data{}, fmt.Errorf("read roster: %w", err)
	}
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return Data{}, fmt.Errorf("parse roster %s: %w", path, err)
	}
	d.fill()
	return d, nil
}

// Path returns the roster file.
func (r *Roster) Path() string {
	return r.path
}

// Snapshot returns a copy of the current data.
func (r *Roster) Snapshot() Data {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data.clone()
}

// Leads returns the members eligible to lead a task.
func (r *Roster) Leads() []task.TeamMember {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return allocation.Eligible(r.data.TeamMembers, r.data.LeadRoles...)
}

// Support returns the members eligible to support a task.
func (r *Roster) Support() []task.TeamMember {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return allocation.Eligible(r.data.TeamMembers, r.data.SupportRoles...)
}

// Assignable returns the members eligible for either role, in roster order.
func (r *Roster) Assignable() []task.TeamMember {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roles := append(slices.Clone(r.data.LeadRoles), r.data.SupportRoles...)
	return allocation.Eligible(r.data.TeamMembers, roles...)
}

// Member looks up a member by case-insensitive name.
func (r *Roster) Member(name string) (task.TeamMember, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.data.TeamMembers {
		if strings.EqualFold(m.Name, strings.TrimSpace(name)) {
			return m, true
		}
	}
	return task.TeamMember{}, false
}

// AddRequestor saves a requestor under a generated ID.
func (r *Roster) AddRequestor(name, email string) (task.Requestor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return task.Requestor{}, errors.New("requestor name required")
	}
	req := task.Requestor{ID: r.newID(), Name: name, Email: strings.TrimSpace(email)}

	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.data.clone()
	next.Requestors = append(next.Requestors, req)
	if err := r.save(next); err != nil {
		return task.Requestor{}, err
	}
	return req, nil
}

// RemoveRequestor deletes the requestor with id.
func (r *Roster) RemoveRequestor(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.data.clone()
	i := slices.IndexFunc(next.Requestors, func(q task.Requestor) bool { return q.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrRequestorNotFound, id)
	}
	next.Requestors = slices.Delete(next.Requestors, i, i+1)
	return r.save(next)
}

// RequestorChoices lists saved requestors followed by requestors seen on
// tasks, deduplicated by name. The first entry for a name wins.
func (r *Roster) RequestorChoices(tasks []task.Task) []task.Requestor {
	r.mu.RLock()
	saved := slices.Clone(r.data.Requestors)
	r.mu.RUnlock()

	for _, t := range tasks {
		if t.Requestor == "" {
			continue
		}
		saved = append(saved, task.Requestor{ID: t.RequestorID, Name: t.Requestor, Email: t.RequestorEmail})
	}
	return DedupeRequestors(saved)
}

// DedupeRequestors keeps the first requestor of each name.
func DedupeRequestors(in []task.Requestor) []task.Requestor {
	seen := make(map[string]bool, len(in))
	out := make([]task.Requestor, 0, len(in))
	for _, q := range in {
		if seen[q.Name] {
			continue
		}
		seen[q.Name] = true
		out = append(out, q)
	}
	return out
}

// save writes next atomically and makes it current. Callers hold mu.
func (r *Roster) save(next Data) error {
	raw, err := yaml.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("create roster directory: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write roster: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace roster: %w", err)
	}
	r.data = next
	return nil
}
