package rowstore

import (
	"context"
	"fmt"
	"sync"
)

type memoryTable struct {
	header []string
	rows   [][]string
}

// MemoryBackend keeps tables in process memory
type MemoryBackend struct {
	mu     sync.RWMutex
	tables map[string]*memoryTable
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		tables: make(map[string]*memoryTable),
	}
}

func copyRow(row []string) []string {
	out := make([]string, len(row))
	copy(out, row)
	return out
}

func (m *MemoryBackend) table(name string) (*memoryTable, error) {
	t, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNoTable)
	}
	return t, nil
}

// EnsureTable creates the table when missing
func (m *MemoryBackend) EnsureTable(ctx context.Context, table string, header []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tables[table]; ok {
		return nil
	}
	m.tables[table] = &memoryTable{header: copyRow(header)}
	return nil
}

// Header returns the header row
func (m *MemoryBackend) Header(ctx context.Context, table string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, err := m.table(table)
	if err != nil {
		return nil, err
	}
	return copyRow(t.header), nil
}

// SetHeader overwrites the header row, creating the table if needed
func (m *MemoryBackend) SetHeader(ctx context.Context, table string, header []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[table]
	if !ok {
		m.tables[table] = &memoryTable{header: copyRow(header)}
		return nil
	}
	t.header = copyRow(header)
	return nil
}

// Rows returns copies of all data rows
func (m *MemoryBackend) Rows(ctx context.Context, table string) ([][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, err := m.table(table)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = copyRow(row)
	}
	return out, nil
}

// Append adds rows at the end
func (m *MemoryBackend) Append(ctx context.Context, table string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.table(table)
	if err != nil {
		return err
	}
	for _, row := range rows {
		t.rows = append(t.rows, copyRow(row))
	}
	return nil
}

// UpdateRow overwrites the row at index
func (m *MemoryBackend) UpdateRow(ctx context.Context, table string, index int, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.table(table)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(t.rows) {
		return fmt.Errorf("row %d: %w", index, ErrNotFound)
	}
	t.rows[index] = copyRow(row)
	return nil
}

// DeleteRow removes the row at index
func (m *MemoryBackend) DeleteRow(ctx context.Context, table string, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.table(table)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(t.rows) {
		return fmt.Errorf("row %d: %w", index, ErrNotFound)
	}
	t.rows = append(t.rows[:index], t.rows[index+1:]...)
	return nil
}
