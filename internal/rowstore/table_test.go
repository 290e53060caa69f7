package rowstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHeader = []string{"item_id", "name", "count", "tags", "done", "meta"}

func setupTestTable(t *testing.T, opts Options) (*Table, *MemoryBackend) {
	t.Helper()
	backend := NewMemoryBackend()
	store := NewStore(backend, opts)
	table := store.Table("Items")
	require.NoError(t, table.Ensure(context.Background(), testHeader))
	return table, backend
}

func TestTable_AppendAndGetAll(t *testing.T) {
	table, _ := setupTestTable(t, Options{})
	ctx := context.Background()

	err := table.Append(ctx, Record{
		"item_id": "a",
		"name":    "ramp",
		"count":   3,
		"tags":    []string{"x", "y"},
		"done":    true,
		"meta":    map[string]any{"k": "v"},
	})
	require.NoError(t, err)

	records, err := table.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "a", rec.String("item_id"))
	assert.Equal(t, "ramp", rec.String("name"))
	assert.Equal(t, 3, rec.Int("count"))
	assert.Equal(t, []string{"x", "y"}, rec.Strings("tags"))
	assert.True(t, rec.Bool("done"))

	var meta map[string]string
	require.NoError(t, rec.Decode("meta", &meta))
	assert.Equal(t, "v", meta["k"])
}

func TestTable_FindAndFindOne(t *testing.T) {
	table, _ := setupTestTable(t, Options{})
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, table.Append(ctx, Record{"item_id": id, "count": len(id)}))
	}

	matched, err := table.Find(ctx, func(r Record) bool { return r.String("item_id") != "b" })
	require.NoError(t, err)
	assert.Len(t, matched, 2)

	rec, err := table.FindOne(ctx, func(r Record) bool { return r.String("item_id") == "c" })
	require.NoError(t, err)
	assert.Equal(t, "c", rec.String("item_id"))

	_, err = table.FindOne(ctx, func(r Record) bool { return r.String("item_id") == "zzz" })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTable_UpdateByIDMergesAndRewritesRow(t *testing.T) {
	table, backend := setupTestTable(t, Options{})
	ctx := context.Background()

	require.NoError(t, table.Append(ctx, Record{"item_id": "a", "name": "ramp", "count": 1}))
	require.NoError(t, table.Append(ctx, Record{"item_id": "b", "name": "door", "count": 2}))

	updated, err := table.UpdateByID(ctx, "item_id", "b", Record{"count": 5, "done": true})
	require.NoError(t, err)
	assert.Equal(t, "door", updated.String("name"))
	assert.Equal(t, 5, updated.Int("count"))

	rows, err := backend.Rows(ctx, "Items")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "door", "5", "", "true", ""}, rows[1])

	// nil clears a cell
	_, err = table.UpdateByID(ctx, "item_id", "b", Record{"done": nil})
	require.NoError(t, err)
	rec, err := table.FindOne(ctx, func(r Record) bool { return r.String("item_id") == "b" })
	require.NoError(t, err)
	_, present := rec["done"]
	assert.False(t, present)

	_, err = table.UpdateByID(ctx, "item_id", "missing", Record{"count": 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTable_DeleteByIDShiftsRows(t *testing.T) {
	table, _ := setupTestTable(t, Options{})
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, table.Append(ctx, Record{"item_id": id}))
	}

	require.NoError(t, table.DeleteByID(ctx, "item_id", "b"))

	records, err := table.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].String("item_id"))
	assert.Equal(t, "c", records[1].String("item_id"))

	err = table.DeleteByID(ctx, "item_id", "b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTable_DeleteWhere(t *testing.T) {
	table, _ := setupTestTable(t, Options{})
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, table.Append(ctx, Record{"item_id": id, "count": i}))
	}

	deleted, err := table.DeleteWhere(ctx, func(r Record) bool { return r.Int("count")%2 == 0 })
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	records, err := table.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].String("item_id"))
	assert.Equal(t, "d", records[1].String("item_id"))
}

type countingBackend struct {
	*MemoryBackend
	appendCalls []int
	failAfter   int
}

func (c *countingBackend) Append(ctx context.Context, table string, rows [][]string) error {
	if c.failAfter > 0 && len(c.appendCalls) >= c.failAfter {
		return errors.New("quota exceeded")
	}
	c.appendCalls = append(c.appendCalls, len(rows))
	return c.MemoryBackend.Append(ctx, table, rows)
}

func TestTable_AppendManyChunks(t *testing.T) {
	backend := &countingBackend{MemoryBackend: NewMemoryBackend()}
	store := NewStore(backend, Options{BatchSize: 20, BatchDelay: 5 * time.Millisecond})
	table := store.Table("Items")
	ctx := context.Background()
	require.NoError(t, table.Ensure(ctx, testHeader))

	recs := make([]Record, 45)
	for i := range recs {
		recs[i] = Record{"item_id": string(rune('a' + i%26)), "count": i}
	}

	start := time.Now()
	written, err := table.AppendMany(ctx, recs)
	require.NoError(t, err)
	assert.Equal(t, 45, written)
	assert.Equal(t, []int{20, 20, 5}, backend.appendCalls)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)

	records, err := table.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 45)
	assert.Equal(t, 44, records[44].Int("count"))
}

func TestTable_AppendManyKeepsWrittenChunksOnFailure(t *testing.T) {
	backend := &countingBackend{MemoryBackend: NewMemoryBackend(), failAfter: 1}
	store := NewStore(backend, Options{BatchSize: 2})
	table := store.Table("Items")
	ctx := context.Background()
	require.NoError(t, table.Ensure(ctx, testHeader))

	recs := []Record{{"item_id": "a"}, {"item_id": "b"}, {"item_id": "c"}}
	written, err := table.AppendMany(ctx, recs)
	assert.Error(t, err)
	assert.Equal(t, 2, written)

	records, err := table.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestTable_AppendManyHonoursCancellation(t *testing.T) {
	table, _ := setupTestTable(t, Options{BatchSize: 1, BatchDelay: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	written, err := table.AppendMany(ctx, []Record{{"item_id": "a"}, {"item_id": "b"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, written)
}

func TestTable_NotConfigured(t *testing.T) {
	store := NewStore(nil, Options{})
	table := store.Table("Items")

	_, err := table.GetAll(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)

	err = table.Append(context.Background(), Record{"item_id": "a"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestTable_SetHeader(t *testing.T) {
	table, _ := setupTestTable(t, Options{})
	ctx := context.Background()

	require.NoError(t, table.SetHeader(ctx, []string{"item_id", "label"}))
	header, err := table.Header(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"item_id", "label"}, header)
}
