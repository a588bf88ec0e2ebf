// Package repository is the only component that talks to the remote task
// sheet. It resolves logical task identifiers to store rows and performs
// read-modify-write updates.
//
// Updates are not protected against concurrent editors: every update fetches
// the full sheet, resolves the row, then replaces it. If two writers read
// before either writes, the last write wins and the other is silently lost.
package repository

import (
	"context"
	"errors"
	"log/slog"

	"buildboard/internal/notify"
	"buildboard/internal/service"
	"buildboard/internal/sheet"
	"buildboard/internal/task"
)

// User-facing outcome messages.
const (
	msgFetchFailed    = "Failed to fetch tasks. Please try again."
	msgCreateFailed   = "Failed to create task. Please try again."
	msgUpdateFailed   = "Failed to update task. Please try again."
	msgAllocateFailed = "Failed to allocate task. Please try again."
	msgNotFound       = "Task not found"
	msgCreated        = "Task created successfully"
	msgUpdated        = "Task updated successfully"
)

// Allocation assigns people to a task.
type Allocation struct {
	Lead          string
	SecondaryLead string
	Team          []string
}

// Repository lists, creates, updates and allocates tasks.
//
// Every operation returns its result and an error. A non-nil error is always
// a *service.Error whose message has also been sent to the notifier. Nothing
// is retried.
type Repository struct {
	sheet          service.Sheet
	codec          *sheet.Codec
	notifier       notify.Notifier
	logger         *slog.Logger
	newID          func() string
	newRequestorID func() string
}

// Option configures a Repository.
type Option func(*Repository)

// WithNotifier sets the side channel for outcome messages.
func WithNotifier(n notify.Notifier) Option {
	return func(r *Repository) { r.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

// WithIDGenerator overrides logical identifier generation.
func WithIDGenerator(f func() string) Option {
	return func(r *Repository) { r.newID = f }
}

// New returns a repository over the task sheet s.
func New(s service.Sheet, codec *sheet.Codec, opts ...Option) *Repository {
	r := &Repository{
		sheet:          s,
		codec:          codec,
		notifier:       notify.Discard,
		logger:         slog.Default(),
		newID:          task.NewID,
		newRequestorID: task.NewRequestorID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListTasks fetches and decodes every row. On failure it returns an empty
// slice together with the error, so an empty result alone does not mean the
// sheet is empty.
func (r *Repository) ListTasks(ctx context.Context) ([]task.Task, error) {
	tasks, err := r.fetch(ctx)
	if err != nil {
		return []task.Task{}, r.fail(ctx, wrap(msgFetchFailed, err))
	}
	return tasks, nil
}

// GetTask fetches the sheet and returns the task with the given logical ID.
func (r *Repository) GetTask(ctx context.Context, id string) (task.Task, error) {
	tasks, err := r.fetch(ctx)
	if err != nil {
		return task.Task{}, r.fail(ctx, wrap(msgFetchFailed, err))
	}
	t, ok := find(tasks, id)
	if !ok {
		return task.Task{}, r.fail(ctx, notFound(id))
	}
	return t, nil
}

// CreateTask appends t as a new row. A missing ID, status, priority or
// requestor ID is generated or defaulted first. The returned task carries the
// row ID when the store reports one.
func (r *Repository) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	if t.ID == "" {
		t.ID = r.newID()
	}
	if t.Status == "" {
		t.Status = task.StatusPendingAllocation
	}
	if t.Priority == "" {
		t.Priority = task.PriorityMedium
	}
	if t.RequestorID == "" && t.Requestor != "" {
		t.RequestorID = r.newRequestorID()
	}
	if t.Team == nil {
		t.Team = []string{}
	}
	t.RowID = 0

	stored, err := r.sheet.AddRows(ctx, []sheet.Row{r.codec.Encode(t)})
	if err != nil {
		return task.Task{}, r.fail(ctx, wrap(msgCreateFailed, err))
	}
	if len(stored) == 1 {
		t.RowID = stored[0].ID
	}

	r.logger.DebugContext(ctx, "task created", "task_id", t.ID, "row_id", t.RowID)
	r.notifier.Success(msgCreated)
	return t, nil
}

// UpdateTask replaces the stored row of t. The row is resolved by t.ID
// against a fresh fetch of the whole sheet; t.RowID is ignored. An ID that is
// not in the fetched set fails with service.KindNotFound and nothing is
// written.
func (r *Repository) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	tasks, err := r.fetch(ctx)
	if err != nil {
		return task.Task{}, r.fail(ctx, wrap(msgUpdateFailed, err))
	}
	existing, ok := find(tasks, t.ID)
	if !ok {
		return task.Task{}, r.fail(ctx, notFound(t.ID))
	}
	if existing.RowID == 0 {
		return task.Task{}, r.fail(ctx, service.NewError(service.KindDecode, msgUpdateFailed,
			errors.New("stored row has no identifier")))
	}

	t.RowID = existing.RowID
	if t.Team == nil {
		t.Team = []string{}
	}
	if err := r.sheet.UpdateRows(ctx, []sheet.Row{r.codec.Encode(t)}); err != nil {
		return task.Task{}, r.fail(ctx, wrap(msgUpdateFailed, err))
	}

	r.logger.DebugContext(ctx, "task updated", "task_id", t.ID, "row_id", t.RowID, "status", t.Status)
	r.notifier.Success(msgUpdated)
	return t, nil
}

// AllocateTask sets the leads and team of the task with the given ID and
// forces its status to Assigned, whatever it was before, then updates it.
func (r *Repository) AllocateTask(ctx context.Context, id string, a Allocation) (task.Task, error) {
	tasks, err := r.fetch(ctx)
	if err != nil {
		return task.Task{}, r.fail(ctx, wrap(msgAllocateFailed, err))
	}
	t, ok := find(tasks, id)
	if !ok {
		return task.Task{}, r.fail(ctx, notFound(id))
	}

	t.Lead = a.Lead
	t.SecondaryLead = a.SecondaryLead
	t.Team = append([]string{}, a.Team...)
	t.Status = task.StatusAssigned

	return r.UpdateTask(ctx, t)
}

func (r *Repository) fetch(ctx context.Context) ([]task.Task, error) {
	rows, err := r.sheet.Rows(ctx)
	if err != nil {
		return nil, err
	}
	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, r.codec.Decode(row))
	}
	r.logger.DebugContext(ctx, "tasks fetched", "rows", len(rows))
	return tasks, nil
}

func (r *Repository) fail(ctx context.Context, err *service.Error) error {
	r.logger.WarnContext(ctx, "task store operation failed",
		"kind", err.Kind.String(), "status", err.Status, "error", err)
	r.notifier.Error(err.Msg)
	return err
}

func find(tasks []task.Task, id string) (task.Task, bool) {
	if id == "" {
		return task.Task{}, false
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}

// wrap gives err the user-facing message msg, keeping its kind and status.
// Unclassified errors count as transport failures.
func wrap(msg string, err error) *service.Error {
	out := &service.Error{Kind: service.KindTransport, Msg: msg, Err: err}
	var se *service.Error
	if errors.As(err, &se) {
		out.Kind = se.Kind
		out.Status = se.Status
	}
	return out
}

func notFound(id string) *service.Error {
	return service.NewError(service.KindNotFound, msgNotFound, errors.New("no row for task "+id))
}
