// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"buildboard/internal/service"
	"buildboard/internal/sheet"
	"buildboard/internal/task"
)

// FirstRowID is the row ID a FakeSheet assigns to its first row.
const FirstRowID int64 = 1000

// FakeSheet is an in-memory implementation of service.Sheet for testing.
type FakeSheet struct {
	mu     sync.Mutex
	rows   []sheet.Row
	nextID int64

	// Call counters
	RowsCalls   int
	AddCalls    int
	UpdateCalls int

	// Error injection for testing
	RowsErr       error
	AddRowsErr    error
	UpdateRowsErr error
}

// NewFakeSheet creates an empty FakeSheet.
func NewFakeSheet() *FakeSheet {
	return &FakeSheet{nextID: FirstRowID}
}

// Seed appends rows, assigning row IDs to those without one.
func (f *FakeSheet) Seed(rows ...sheet.Row) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rows {
		if r.ID == 0 {
			r.ID = f.nextID
			f.nextID++
		}
		f.rows = append(f.rows, r)
	}
}

// SeedTasks encodes tasks with codec and seeds them.
func (f *FakeSheet) SeedTasks(codec *sheet.Codec, tasks ...task.Task) {
	for _, t := range tasks {
		f.Seed(codec.Encode(t))
	}
}

// Snapshot returns a copy of the stored rows.
func (f *FakeSheet) Snapshot() []sheet.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneRows(f.rows)
}

// Writes returns the number of write requests received.
func (f *FakeSheet) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.AddCalls + f.UpdateCalls
}

// Rows implements service.Sheet.
func (f *FakeSheet) Rows(ctx context.Context) ([]sheet.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RowsCalls++
	if f.RowsErr != nil {
		return nil, f.RowsErr
	}
	return cloneRows(f.rows), nil
}

// AddRows implements service.Sheet.
func (f *FakeSheet) AddRows(ctx context.Context, rows []sheet.Row) ([]sheet.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AddCalls++
	if f.AddRowsErr != nil {
		return nil, f.AddRowsErr
	}
	stored := make([]sheet.Row, 0, len(rows))
	for _, r := range rows {
		if r.ID != 0 {
			return nil, service.StoreError(http.StatusBadRequest, "row id not allowed on append", nil)
		}
		r.ID = f.nextID
		f.nextID++
		r.Cells = append([]sheet.Cell(nil), r.Cells...)
		f.rows = append(f.rows, r)
		stored = append(stored, r)
	}
	return cloneRows(stored), nil
}

// UpdateRows implements service.Sheet. Every row must exist.
func (f *FakeSheet) UpdateRows(ctx context.Context, rows []sheet.Row) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	if f.UpdateRowsErr != nil {
		return f.UpdateRowsErr
	}
	for _, r := range rows {
		i := f.indexOf(r.ID)
		if i < 0 {
			return service.StoreError(http.StatusNotFound, "row not found",
				fmt.Errorf("row %d", r.ID))
		}
		f.rows[i].Cells = append([]sheet.Cell(nil), r.Cells...)
	}
	return nil
}

func (f *FakeSheet) indexOf(id int64) int {
	for i, r := range f.rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func cloneRows(rows []sheet.Row) []sheet.Row {
	out := make([]sheet.Row, len(rows))
	for i, r := range rows {
		out[i] = sheet.Row{ID: r.ID, Cells: append([]sheet.Cell(nil), r.Cells...)}
	}
	return out
}

// ErrUnreachable simulates a network failure.
var ErrUnreachable = errors.New("dial tcp: connection refused")

// Codec returns a task codec over a positional scheme.
func Codec() *sheet.Codec {
	c, err := sheet.NewCodec(sheet.PositionalScheme("test", sheet.TaskFields()))
	if err != nil {
		panic(err)
	}
	return c
}
