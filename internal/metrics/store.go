package metrics

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sourcegraph/conc/pool"

	"buildboard/internal/notify"
	"buildboard/internal/service"
	"buildboard/internal/sheet"
	"buildboard/internal/task"
)

// DefaultConcurrency bounds the replace requests of one Save.
const DefaultConcurrency = 4

const (
	msgLoadFailed = "Failed to load metrics."
	msgSaveFailed = "Failed to save metrics. Please try again."
	msgSaved      = "Metrics saved successfully"
)

// Store reads and writes the metrics sheet.
type Store struct {
	sheet       service.Sheet
	scheme      sheet.Scheme
	notifier    notify.Notifier
	logger      *slog.Logger
	concurrency int
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier sets the side channel for outcome messages.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithConcurrency sets how many replace requests may be in flight at once.
func WithConcurrency(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewStore returns a store over the metrics sheet s laid out by scheme.
func NewStore(s service.Sheet, scheme sheet.Scheme, opts ...Option) (*Store, error) {
	if err := scheme.Validate(); err != nil {
		return nil, err
	}
	for _, f := range []string{FieldEmployee, FieldProject, FieldTaskType} {
		if _, ok := scheme.Column(f); !ok {
			return nil, errors.New("metrics scheme has no column for " + f)
		}
	}
	st := &Store{
		sheet:       s,
		scheme:      scheme,
		notifier:    notify.Discard,
		logger:      slog.Default(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(st)
	}
	return st, nil
}

// Load reads every metrics row and attaches it to the first task with the
// same project, type and sub-type. Rows matching no task are skipped. A later
// row for the same member replaces an earlier one.
func (s *Store) Load(ctx context.Context, tasks []task.Task) (map[string]TaskMetrics, error) {
	rows, err := s.sheet.Rows(ctx)
	if err != nil {
		return map[string]TaskMetrics{}, s.fail(ctx, msgLoadFailed, err)
	}

	out := make(map[string]TaskMetrics)
	for _, row := range rows {
		rec := decode(s.scheme, row)
		i := indexOfTask(tasks, rec)
		if i < 0 || tasks[i].ID == "" {
			continue
		}
		t := tasks[i]
		m, ok := out[t.ID]
		if !ok {
			m = TaskMetrics{TaskID: t.ID, Members: []Entry{}}
		}
		entry := Entry{
			Name:     rec.employee,
			Role:     RoleOf(t, rec.employee),
			Units:    rec.units,
			Errors:   rec.errors,
			PassRate: PassRate(rec.units, rec.errors),
			RowID:    rec.rowID,
		}
		if j := indexOfMember(m.Members, rec.employee); j >= 0 {
			m.Members[j] = entry
		} else {
			m.Members = append(m.Members, entry)
		}
		out[t.ID] = m
	}
	s.logger.DebugContext(ctx, "metrics fetched", "rows", len(rows), "tasks", len(out))
	return out, nil
}

// For returns the loaded metrics of t, or a template for its lead and team
// when none are stored.
func For(loaded map[string]TaskMetrics, t task.Task) TaskMetrics {
	if m, ok := loaded[t.ID]; ok {
		return m
	}
	return Template(t)
}

// Save writes the entries of m for t. Stored entries are replaced one row per
// request; new entries are appended in one request after the replacements.
// Nothing is written when m has no entries.
func (s *Store) Save(ctx context.Context, t task.Task, m TaskMetrics) error {
	if len(m.Members) == 0 {
		return nil
	}

	var added []sheet.Row
	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(s.concurrency)
	for _, e := range m.Members {
		e.PassRate = PassRate(e.Units, e.Errors)
		row := encode(s.scheme, t, e)
		if row.ID == 0 {
			added = append(added, row)
			continue
		}
		p.Go(func(ctx context.Context) error {
			return s.sheet.UpdateRows(ctx, []sheet.Row{row})
		})
	}
	if err := p.Wait(); err != nil {
		return s.fail(ctx, msgSaveFailed, err)
	}

	if len(added) > 0 {
		if _, err := s.sheet.AddRows(ctx, added); err != nil {
			return s.fail(ctx, msgSaveFailed, err)
		}
	}

	s.logger.DebugContext(ctx, "metrics saved", "task_id", t.ID,
		"replaced", len(m.Members)-len(added), "added", len(added))
	s.notifier.Success(msgSaved)
	return nil
}

func (s *Store) fail(ctx context.Context, msg string, err error) error {
	out := &service.Error{Kind: service.KindTransport, Msg: msg, Err: err}
	var se *service.Error
	if errors.As(err, &se) {
		out.Kind = se.Kind
		out.Status = se.Status
	}
	s.logger.WarnContext(ctx, "metrics store operation failed",
		"kind", out.Kind.String(), "status", out.Status, "error", err)
	s.notifier.Error(msg)
	return out
}

func indexOfTask(tasks []task.Task, rec record) int {
	for i, t := range tasks {
		if rec.matches(t) {
			return i
		}
	}
	return -1
}

func indexOfMember(members []Entry, name string) int {
	for i, e := range members {
		if e.Name == name {
			return i
		}
	}
	return -1
}
