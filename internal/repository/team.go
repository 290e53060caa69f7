package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"barrierfree-backend/internal/models"
	"barrierfree-backend/internal/rowstore"
)

// TeamRepository handles row store operations for teams
type TeamRepository struct {
	table *rowstore.Table
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(store *rowstore.Store) *TeamRepository {
	return &TeamRepository{table: store.Table(TableTeams)}
}

func teamFromRecord(rec rowstore.Record) *models.Team {
	isPublic := true
	if _, ok := rec["is_public"]; ok {
		isPublic = rec.Bool("is_public")
	}
	return &models.Team{
		ID:          rec.String("team_id"),
		Name:        rec.String("name"),
		Description: rec.String("description"),
		LeaderID:    rec.String("leader_id"),
		MemberIDs:   stringsOrEmpty(rec.Strings("member_ids")),
		TotalXP:     rec.Int("total_xp"),
		Level:       max(1, rec.Int("level")),
		IsPublic:    isPublic,
		CreatedAt:   rec.Time("created_at"),
		UpdatedAt:   rec.Time("updated_at"),
	}
}

// Create creates a new team
func (r *TeamRepository) Create(ctx context.Context, t *models.Team) error {
	err := r.table.Append(ctx, rowstore.Record{
		"team_id":     t.ID,
		"name":        t.Name,
		"description": t.Description,
		"leader_id":   t.LeaderID,
		"member_ids":  stringsOrEmpty(t.MemberIDs),
		"total_xp":    t.TotalXP,
		"level":       t.Level,
		"is_public":   t.IsPublic,
		"created_at":  t.CreatedAt,
		"updated_at":  t.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

// GetByID retrieves a team by ID
func (r *TeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	rec, err := r.table.FindOne(ctx, func(rec rowstore.Record) bool {
		return rec.String("team_id") == id
	})
	if err != nil {
		return nil, fmt.Errorf("team not found: %w", err)
	}
	return teamFromRecord(rec), nil
}

// NameExists checks for a team with the same trimmed, case-insensitive name
func (r *TeamRepository) NameExists(ctx context.Context, name string) (bool, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	recs, err := r.table.Find(ctx, func(rec rowstore.Record) bool {
		return strings.ToLower(strings.TrimSpace(rec.String("name"))) == want
	})
	if err != nil {
		return false, fmt.Errorf("failed to check team name: %w", err)
	}
	return len(recs) > 0, nil
}

// List returns all teams
func (r *TeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	recs, err := r.table.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	teams := make([]*models.Team, len(recs))
	for i, rec := range recs {
		teams[i] = teamFromRecord(rec)
	}
	return teams, nil
}

// UpdateMembers writes the member set
func (r *TeamRepository) UpdateMembers(ctx context.Context, id string, memberIDs []string, updatedAt time.Time) (*models.Team, error) {
	rec, err := r.table.UpdateByID(ctx, "team_id", id, rowstore.Record{
		"member_ids": stringsOrEmpty(memberIDs),
		"updated_at": updatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update team members: %w", err)
	}
	return teamFromRecord(rec), nil
}

// DeleteByName removes teams with exactly this name
func (r *TeamRepository) DeleteByName(ctx context.Context, name string) (int, error) {
	n, err := r.table.DeleteWhere(ctx, func(rec rowstore.Record) bool {
		return rec.String("name") == name
	})
	if err != nil {
		return n, fmt.Errorf("failed to delete teams: %w", err)
	}
	return n, nil
}
