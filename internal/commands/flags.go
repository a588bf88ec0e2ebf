package commands

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"buildboard/internal/sheet"
	"buildboard/internal/task"
)

// optString is a string flag that remembers whether it was given.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// optInt is an int flag that remembers whether it was given.
type optInt struct {
	value int
	set   bool
}

func (o *optInt) String() string { return strconv.Itoa(o.value) }

func (o *optInt) Set(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	o.value = n
	o.set = true
	return nil
}

// multiString collects every occurrence of a repeated flag.
type multiString []string

func (m *multiString) String() string { return strings.Join(*m, ",") }

func (m *multiString) Set(s string) error {
	*m = append(*m, s)
	return nil
}

// parseTeam splits a comma separated list of names.
func parseTeam(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return sheet.TeamValue(out)
}

// taskFlags are the editable task fields shared by add and update.
type taskFlags struct {
	taskType       optString
	subType        optString
	sponsor        optString
	project        optString
	priority       optString
	system         optString
	integrations   optString
	description    optString
	start          optString
	end            optString
	docs           optString
	requestor      optString
	requestorEmail optString
	hours          optInt
	secondaryHours optInt
}

func (f *taskFlags) register(fs *flag.FlagSet) {
	*f = taskFlags{}
	fs.Var(&f.taskType, "type", "")
	fs.Var(&f.subType, "subtype", "")
	fs.Var(&f.sponsor, "sponsor", "")
	fs.Var(&f.project, "project", "")
	fs.Var(&f.priority, "priority", "")
	fs.Var(&f.system, "system", "")
	fs.Var(&f.integrations, "integrations", "")
	fs.Var(&f.description, "description", "")
	fs.Var(&f.start, "start", "")
	fs.Var(&f.end, "end", "")
	fs.Var(&f.docs, "docs", "")
	fs.Var(&f.requestor, "requestor", "")
	fs.Var(&f.requestorEmail, "requestor-email", "")
	fs.Var(&f.hours, "hours", "")
	fs.Var(&f.secondaryHours, "secondary-hours", "")
}

// apply copies every given flag onto t.
func (f *taskFlags) apply(t *task.Task) error {
	texts := []struct {
		opt *optString
		dst *string
	}{
		{&f.taskType, &t.Type},
		{&f.subType, &t.SubType},
		{&f.sponsor, &t.Sponsor},
		{&f.project, &t.ProjectName},
		{&f.system, &t.EDCSystem},
		{&f.integrations, &t.Integrations},
		{&f.description, &t.Description},
		{&f.start, &t.StartDate},
		{&f.end, &t.EndDate},
		{&f.docs, &t.DocReferences},
		{&f.requestor, &t.Requestor},
		{&f.requestorEmail, &t.RequestorEmail},
	}
	for _, x := range texts {
		if x.opt.set {
			*x.dst = strings.TrimSpace(x.opt.value)
		}
	}
	if f.priority.set {
		p, ok := task.ParsePriority(f.priority.value)
		if !ok {
			return fmt.Errorf("invalid priority: %s", f.priority.value)
		}
		t.Priority = p
	}
	if f.hours.set {
		t.ScopedHours = f.hours.value
	}
	if f.secondaryHours.set {
		t.SecondaryHours = f.secondaryHours.value
	}
	for _, d := range []string{t.StartDate, t.EndDate} {
		if d == "" {
			continue
		}
		if _, err := task.ParseDate(d); err != nil {
			return fmt.Errorf("invalid date (want YYYY-MM-DD): %s", d)
		}
	}
	if t.ScopedHours < 0 || t.SecondaryHours < 0 {
		return fmt.Errorf("hours must not be negative")
	}
	return nil
}

// given reports whether at least one flag was given.
func (f *taskFlags) given() bool {
	for _, o := range []*optString{
		&f.taskType, &f.subType, &f.sponsor, &f.project, &f.priority, &f.system,
		&f.integrations, &f.description, &f.start, &f.end, &f.docs,
		&f.requestor, &f.requestorEmail,
	} {
		if o.set {
			return true
		}
	}
	return f.hours.set || f.secondaryHours.set
}
