package repository

import (
	"context"
	"testing"
	"time"

	"barrierfree-backend/internal/models"
	"barrierfree-backend/internal/rowstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *rowstore.Store {
	t.Helper()
	store := rowstore.NewStore(rowstore.NewMemoryBackend(), rowstore.Options{BatchDelay: time.Millisecond})
	require.NoError(t, InitTables(context.Background(), store))
	return store
}

func TestReportRepository_RoundTrip(t *testing.T) {
	store := setupTestStore(t)
	repo := NewReportRepository(store)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	report := &models.Report{
		ID:              "r-1",
		UserID:          "u-1",
		Type:            models.ReportTypeBarrier,
		Category:        "no_ramp",
		Latitude:        37.2636,
		Longitude:       127.0286,
		Address:         "경기 수원시 팔달구 정조로 825",
		MediaURLs:       []string{"https://cdn.example.com/a.jpg"},
		AIAnalysis:      &models.AIAnalysis{DetectedCategory: "no_ramp", Severity: "high", Tags: []string{"ramp"}},
		ConfidenceScore: 100,
		Status:          models.ReportStatusActive,
		AdminStatus:     models.AdminStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, repo.Create(ctx, report))

	got, err := repo.GetByID(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, report.Category, got.Category)
	assert.InDelta(t, 37.2636, got.Latitude, 1e-9)
	assert.Equal(t, report.MediaURLs, got.MediaURLs)
	require.NotNil(t, got.AIAnalysis)
	assert.Equal(t, "high", got.AIAnalysis.Severity)
	assert.Nil(t, got.ResolvedAt)
	assert.True(t, now.Equal(got.CreatedAt))

	resolvedAt := now.Add(time.Hour)
	updated, err := repo.Update(ctx, "r-1", rowstore.Record{
		"status":      models.ReportStatusResolved,
		"resolved_by": "u-2",
		"resolved_at": resolvedAt,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusResolved, updated.Status)
	require.NotNil(t, updated.ResolvedAt)
	assert.True(t, resolvedAt.Equal(*updated.ResolvedAt))

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserQuestRepository_Progress(t *testing.T) {
	store := setupTestStore(t)
	repo := NewUserQuestRepository(store)
	ctx := context.Background()

	uq := &models.UserQuest{ID: "uq-1", UserID: "u-1", QuestID: "q-1", Progress: 1, StartedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, uq))

	completedAt := time.Now()
	uq.Progress = 3
	uq.Completed = true
	uq.CompletedAt = &completedAt
	require.NoError(t, repo.UpdateProgress(ctx, uq))

	got, err := repo.Get(ctx, "u-1", "q-1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Progress)
	assert.True(t, got.Completed)
	assert.False(t, got.Claimed)
	assert.NotNil(t, got.CompletedAt)

	all, err := repo.ListByUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Contains(t, all, "q-1")
}

func TestFixHeaders(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Table(TableQuests).SetHeader(ctx, []string{"quest_id", "title"}))

	results := FixHeaders(ctx, store)
	assert.Len(t, results, len(Schemas))
	assert.Equal(t, "updated", results[TableQuests])

	header, err := store.Table(TableQuests).Header(ctx)
	require.NoError(t, err)
	assert.Contains(t, header, "trigger_action")
}
