// Package service defines the backend-agnostic contract of the remote row store.
package service

import (
	"context"

	"buildboard/internal/sheet"
)

// Sheet is one sheet of a remote row store.
// All store calls go through this interface.
// Commands and the repository never import a store SDK directly.
type Sheet interface {
	// Rows fetches every row of the sheet in store order.
	// There are no partial queries.
	Rows(ctx context.Context) ([]sheet.Row, error)

	// AddRows appends rows in one request. Rows must not carry an ID.
	// Returns the rows as stored, with IDs, when the store reports them.
	AddRows(ctx context.Context, rows []sheet.Row) ([]sheet.Row, error)

	// UpdateRows replaces rows by row ID in one request.
	UpdateRows(ctx context.Context, rows []sheet.Row) error
}

// Sheets groups the sheets a workspace is made of.
// Metrics is nil when no metrics sheet is configured.
type Sheets struct {
	Tasks   Sheet
	Metrics Sheet
}

// Column describes one column of a sheet.
type Column struct {
	ID    int64  `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// Describer is implemented by sheets that can list their columns.
type Describer interface {
	Columns(ctx context.Context) ([]Column, error)
}
