package repository

import (
	"context"
	"fmt"

	"barrierfree-backend/internal/models"
	"barrierfree-backend/internal/rowstore"
)

// QuestRepository handles row store operations for quests
type QuestRepository struct {
	table *rowstore.Table
}

// NewQuestRepository creates a new quest repository
func NewQuestRepository(store *rowstore.Store) *QuestRepository {
	return &QuestRepository{table: store.Table(TableQuests)}
}

func questToRecord(q *models.Quest) rowstore.Record {
	return rowstore.Record{
		"quest_id":       q.ID,
		"type":           q.Type,
		"title":          q.Title,
		"description":    q.Description,
		"trigger_action": q.TriggerAction,
		"target_count":   q.TargetCount,
		"xp_reward":      q.XPReward,
		"point_reward":   q.PointReward,
		"start_date":     q.StartDate,
		"end_date":       q.EndDate,
		"status":         q.Status,
		"created_at":     q.CreatedAt,
	}
}

func questFromRecord(rec rowstore.Record) *models.Quest {
	return &models.Quest{
		ID:            rec.String("quest_id"),
		Type:          rec.String("type"),
		Title:         rec.String("title"),
		Description:   rec.String("description"),
		TriggerAction: rec.String("trigger_action"),
		TargetCount:   rec.Int("target_count"),
		XPReward:      rec.Int("xp_reward"),
		PointReward:   rec.Int("point_reward"),
		StartDate:     rec.Time("start_date"),
		EndDate:       rec.TimePtr("end_date"),
		Status:        rec.String("status"),
		CreatedAt:     rec.Time("created_at"),
	}
}

// Create creates a new quest
func (r *QuestRepository) Create(ctx context.Context, q *models.Quest) error {
	if err := r.table.Append(ctx, questToRecord(q)); err != nil {
		return fmt.Errorf("failed to create quest: %w", err)
	}
	return nil
}

// CreateMany creates quests in batches
func (r *QuestRepository) CreateMany(ctx context.Context, quests []*models.Quest) (int, error) {
	recs := make([]rowstore.Record, len(quests))
	for i, q := range quests {
		recs[i] = questToRecord(q)
	}
	n, err := r.table.AppendMany(ctx, recs)
	if err != nil {
		return n, fmt.Errorf("failed to create quests: %w", err)
	}
	return n, nil
}

// GetByID retrieves a quest by ID
func (r *QuestRepository) GetByID(ctx context.Context, id string) (*models.Quest, error) {
	rec, err := r.table.FindOne(ctx, func(rec rowstore.Record) bool {
		return rec.String("quest_id") == id
	})
	if err != nil {
		return nil, fmt.Errorf("quest not found: %w", err)
	}
	return questFromRecord(rec), nil
}

// ListActive returns quests whose status is active
func (r *QuestRepository) ListActive(ctx context.Context) ([]*models.Quest, error) {
	recs, err := r.table.Find(ctx, func(rec rowstore.Record) bool {
		return rec.String("status") == models.QuestStatusActive
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}
	quests := make([]*models.Quest, len(recs))
	for i, rec := range recs {
		quests[i] = questFromRecord(rec)
	}
	return quests, nil
}

// SetStatus changes the status of a quest
func (r *QuestRepository) SetStatus(ctx context.Context, id, status string) error {
	if _, err := r.table.UpdateByID(ctx, "quest_id", id, rowstore.Record{"status": status}); err != nil {
		return fmt.Errorf("failed to update quest status: %w", err)
	}
	return nil
}

// UserQuestRepository handles row store operations for per-user quest progress
type UserQuestRepository struct {
	table *rowstore.Table
}

// NewUserQuestRepository creates a new user quest repository
func NewUserQuestRepository(store *rowstore.Store) *UserQuestRepository {
	return &UserQuestRepository{table: store.Table(TableUserQuests)}
}

func userQuestFromRecord(rec rowstore.Record) *models.UserQuest {
	return &models.UserQuest{
		ID:          rec.String("user_quest_id"),
		UserID:      rec.String("user_id"),
		QuestID:     rec.String("quest_id"),
		Progress:    rec.Int("progress"),
		Completed:   rec.Bool("completed"),
		CompletedAt: rec.TimePtr("completed_at"),
		Claimed:     rec.Bool("claimed"),
		ClaimedAt:   rec.TimePtr("claimed_at"),
		StartedAt:   rec.Time("started_at"),
	}
}

// Create creates a new user quest
func (r *UserQuestRepository) Create(ctx context.Context, uq *models.UserQuest) error {
	err := r.table.Append(ctx, rowstore.Record{
		"user_quest_id": uq.ID,
		"user_id":       uq.UserID,
		"quest_id":      uq.QuestID,
		"progress":      uq.Progress,
		"completed":     uq.Completed,
		"completed_at":  uq.CompletedAt,
		"claimed":       uq.Claimed,
		"claimed_at":    uq.ClaimedAt,
		"started_at":    uq.StartedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to create user quest: %w", err)
	}
	return nil
}

// Get retrieves the progress of userID on questID
func (r *UserQuestRepository) Get(ctx context.Context, userID, questID string) (*models.UserQuest, error) {
	rec, err := r.table.FindOne(ctx, func(rec rowstore.Record) bool {
		return rec.String("user_id") == userID && rec.String("quest_id") == questID
	})
	if err != nil {
		return nil, fmt.Errorf("user quest not found: %w", err)
	}
	return userQuestFromRecord(rec), nil
}

// ListByUser returns all quest progress of a user keyed by quest ID
func (r *UserQuestRepository) ListByUser(ctx context.Context, userID string) (map[string]*models.UserQuest, error) {
	recs, err := r.table.Find(ctx, func(rec rowstore.Record) bool {
		return rec.String("user_id") == userID
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list user quests: %w", err)
	}
	out := make(map[string]*models.UserQuest, len(recs))
	for _, rec := range recs {
		uq := userQuestFromRecord(rec)
		out[uq.QuestID] = uq
	}
	return out, nil
}

// UpdateProgress writes progress and completion
func (r *UserQuestRepository) UpdateProgress(ctx context.Context, uq *models.UserQuest) error {
	_, err := r.table.UpdateByID(ctx, "user_quest_id", uq.ID, rowstore.Record{
		"progress":     uq.Progress,
		"completed":    uq.Completed,
		"completed_at": uq.CompletedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to update user quest: %w", err)
	}
	return nil
}

// MarkClaimed records the reward payout
func (r *UserQuestRepository) MarkClaimed(ctx context.Context, uq *models.UserQuest) error {
	_, err := r.table.UpdateByID(ctx, "user_quest_id", uq.ID, rowstore.Record{
		"claimed":    true,
		"claimed_at": uq.ClaimedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to mark user quest claimed: %w", err)
	}
	return nil
}
