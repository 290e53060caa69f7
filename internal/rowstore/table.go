package rowstore

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// DefaultBatchSize is the number of rows written per AppendMany chunk
	DefaultBatchSize = 20
	// DefaultBatchDelay is the pause between AppendMany chunks
	DefaultBatchDelay = time.Second
)

// Options tunes write batching and throttling
type Options struct {
	BatchSize       int
	BatchDelay      time.Duration
	WritesPerSecond float64
}

// Store hands out tables over a single backend
type Store struct {
	backend    Backend
	limiter    *rate.Limiter
	batchSize  int
	batchDelay time.Duration
}

// NewStore creates a new row store. A nil backend yields ErrNotConfigured on every call.
func NewStore(backend Backend, opts Options) *Store {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.BatchDelay < 0 {
		opts.BatchDelay = 0
	}

	limit := rate.Inf
	burst := 1
	if opts.WritesPerSecond > 0 {
		limit = rate.Limit(opts.WritesPerSecond)
		burst = int(opts.WritesPerSecond)
		if burst < 1 {
			burst = 1
		}
	}

	return &Store{
		backend:    backend,
		limiter:    rate.NewLimiter(limit, burst),
		batchSize:  opts.BatchSize,
		batchDelay: opts.BatchDelay,
	}
}

// Backend returns the underlying backend
func (s *Store) Backend() Backend {
	return s.backend
}

// Table returns a handle for the named table
func (s *Store) Table(name string) *Table {
	return &Table{name: name, store: s}
}

// Table reads and writes records of one named table
type Table struct {
	name  string
	store *Store
}

// Name returns the table name
func (t *Table) Name() string {
	return t.name
}

func (t *Table) backend() (Backend, error) {
	if t.store == nil || t.store.backend == nil {
		return nil, ErrNotConfigured
	}
	return t.store.backend, nil
}

func (t *Table) waitWrite(ctx context.Context) error {
	if err := t.store.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for write slot: %w", err)
	}
	return nil
}

// Header returns the table schema
func (t *Table) Header(ctx context.Context) ([]string, error) {
	b, err := t.backend()
	if err != nil {
		return nil, err
	}
	header, err := b.Header(ctx, t.name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s header: %w", t.name, err)
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("table %s has an empty header", t.name)
	}
	return header, nil
}

// load returns header and records, record i matching data row i
func (t *Table) load(ctx context.Context) ([]string, []Record, error) {
	b, err := t.backend()
	if err != nil {
		return nil, nil, err
	}
	header, err := t.Header(ctx)
	if err != nil {
		return nil, nil, err
	}
	rows, err := b.Rows(ctx, t.name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s rows: %w", t.name, err)
	}

	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = fromRow(header, row)
	}
	return header, records, nil
}

// GetAll returns every record in store order
func (t *Table) GetAll(ctx context.Context) ([]Record, error) {
	_, records, err := t.load(ctx)
	return records, err
}

// Find returns the records matching pred
func (t *Table) Find(ctx context.Context, pred func(Record) bool) ([]Record, error) {
	records, err := t.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]Record, 0)
	for _, rec := range records {
		if pred(rec) {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

// FindOne returns the first record matching pred or ErrNotFound
func (t *Table) FindOne(ctx context.Context, pred func(Record) bool) (Record, error) {
	records, err := t.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if pred(rec) {
			return rec, nil
		}
	}
	return nil, ErrNotFound
}

// Append writes one record after the last row
func (t *Table) Append(ctx context.Context, rec Record) error {
	b, err := t.backend()
	if err != nil {
		return err
	}
	header, err := t.Header(ctx)
	if err != nil {
		return err
	}
	row, err := toRow(header, rec)
	if err != nil {
		return err
	}
	if err := t.waitWrite(ctx); err != nil {
		return err
	}
	if err := b.Append(ctx, t.name, [][]string{row}); err != nil {
		return fmt.Errorf("failed to append to %s: %w", t.name, err)
	}
	return nil
}

// AppendMany writes records in fixed size chunks with a pause between chunks.
// Chunks written before a failure stay written; the count of written records is returned.
func (t *Table) AppendMany(ctx context.Context, recs []Record) (int, error) {
	b, err := t.backend()
	if err != nil {
		return 0, err
	}
	if len(recs) == 0 {
		return 0, nil
	}
	header, err := t.Header(ctx)
	if err != nil {
		return 0, err
	}

	rows := make([][]string, len(recs))
	for i, rec := range recs {
		row, err := toRow(header, rec)
		if err != nil {
			return 0, err
		}
		rows[i] = row
	}

	written := 0
	size := t.store.batchSize
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))

		if err := t.waitWrite(ctx); err != nil {
			return written, err
		}
		if err := b.Append(ctx, t.name, rows[start:end]); err != nil {
			return written, fmt.Errorf("failed to append batch to %s: %w", t.name, err)
		}
		written += end - start

		log.Debug().
			Str("table", t.name).
			Int("batch", start/size+1).
			Int("rows", end-start).
			Msg("Batch appended")

		if end < len(rows) && t.store.batchDelay > 0 {
			timer := time.NewTimer(t.store.batchDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return written, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return written, nil
}

// UpdateByID merges patch into the row whose idColumn equals id and rewrites
// the full row. A nil value in patch clears the cell.
func (t *Table) UpdateByID(ctx context.Context, idColumn, id string, patch Record) (Record, error) {
	b, err := t.backend()
	if err != nil {
		return nil, err
	}
	header, records, err := t.load(ctx)
	if err != nil {
		return nil, err
	}

	for i, rec := range records {
		if rec.String(idColumn) != id {
			continue
		}

		for k, v := range patch {
			if v == nil {
				delete(rec, k)
				continue
			}
			rec[k] = v
		}

		row, err := toRow(header, rec)
		if err != nil {
			return nil, err
		}
		if err := t.waitWrite(ctx); err != nil {
			return nil, err
		}
		if err := b.UpdateRow(ctx, t.name, i, row); err != nil {
			return nil, fmt.Errorf("failed to update %s row: %w", t.name, err)
		}
		// re-decode so callers see what a later read would return
		return fromRow(header, row), nil
	}

	return nil, fmt.Errorf("%s %s=%s: %w", t.name, idColumn, id, ErrNotFound)
}

// DeleteByID removes the row whose idColumn equals id
func (t *Table) DeleteByID(ctx context.Context, idColumn, id string) error {
	b, err := t.backend()
	if err != nil {
		return err
	}
	_, records, err := t.load(ctx)
	if err != nil {
		return err
	}

	for i, rec := range records {
		if rec.String(idColumn) != id {
			continue
		}
		if err := t.waitWrite(ctx); err != nil {
			return err
		}
		if err := b.DeleteRow(ctx, t.name, i); err != nil {
			return fmt.Errorf("failed to delete %s row: %w", t.name, err)
		}
		return nil
	}

	return fmt.Errorf("%s %s=%s: %w", t.name, idColumn, id, ErrNotFound)
}

// DeleteWhere removes every row matching pred, last row first so indices stay valid
func (t *Table) DeleteWhere(ctx context.Context, pred func(Record) bool) (int, error) {
	b, err := t.backend()
	if err != nil {
		return 0, err
	}
	_, records, err := t.load(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for i := len(records) - 1; i >= 0; i-- {
		if !pred(records[i]) {
			continue
		}
		if err := t.waitWrite(ctx); err != nil {
			return deleted, err
		}
		if err := b.DeleteRow(ctx, t.name, i); err != nil {
			return deleted, fmt.Errorf("failed to delete %s row: %w", t.name, err)
		}
		deleted++
	}
	return deleted, nil
}

// Ensure creates the table with header when missing
func (t *Table) Ensure(ctx context.Context, header []string) error {
	b, err := t.backend()
	if err != nil {
		return err
	}
	if err := b.EnsureTable(ctx, t.name, header); err != nil {
		return fmt.Errorf("failed to ensure table %s: %w", t.name, err)
	}
	return nil
}

// SetHeader rewrites the header row
func (t *Table) SetHeader(ctx context.Context, header []string) error {
	b, err := t.backend()
	if err != nil {
		return err
	}
	if err := t.waitWrite(ctx); err != nil {
		return err
	}
	if err := b.SetHeader(ctx, t.name, header); err != nil {
		return fmt.Errorf("failed to set %s header: %w", t.name, err)
	}
	return nil
}
