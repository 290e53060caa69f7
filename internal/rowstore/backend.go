package rowstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no row matches an update or delete
	ErrNotFound = errors.New("row not found")
	// ErrNotConfigured is returned when a backend lacks its target identifier
	ErrNotConfigured = errors.New("row store is not configured")
	// ErrNoTable is returned when a table has not been created
	ErrNoTable = errors.New("table does not exist")
)

// Backend is a tabular store addressed by table name. The first row of every
// table is its header; data rows are addressed by 0-based index below it.
type Backend interface {
	// EnsureTable creates the table with the given header when it is missing
	EnsureTable(ctx context.Context, table string, header []string) error
	// Header returns the header row
	Header(ctx context.Context, table string) ([]string, error)
	// SetHeader overwrites the header row
	SetHeader(ctx context.Context, table string, header []string) error
	// Rows returns all data rows in store order
	Rows(ctx context.Context, table string) ([][]string, error)
	// Append adds rows after the last data row
	Append(ctx context.Context, table string, rows [][]string) error
	// UpdateRow overwrites the data row at index
	UpdateRow(ctx context.Context, table string, index int, row []string) error
	// DeleteRow removes the data row at index, shifting later rows up
	DeleteRow(ctx context.Context, table string, index int) error
}
