package repository

import (
	"context"
	"fmt"

	"barrierfree-backend/internal/rowstore"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = rowstore.ErrNotFound

// Table names
const (
	TableUsers         = "Users"
	TableReports       = "Reports"
	TableVerifications = "Verifications"
	TableQuests        = "Quests"
	TableUserQuests    = "UserQuests"
	TableTeams         = "Teams"
	TableNotifications = "Notifications"
)

// Schema is a table name with its canonical header
type Schema struct {
	Table  string
	Header []string
}

// Schemas lists every table in creation order
var Schemas = []Schema{
	{TableUsers, []string{
		"user_id", "email", "name", "nickname", "provider", "avatar_items",
		"accessibility_profile", "xp", "level", "points", "titles", "team_id",
		"push_token", "created_at", "last_login",
	}},
	{TableReports, []string{
		"report_id", "user_id", "type", "category", "latitude", "longitude",
		"address", "city", "district", "description", "media_urls", "ai_analysis",
		"confidence_score", "verify_count", "status", "resolved_by", "resolved_at",
		"admin_status", "admin_note", "created_at", "updated_at",
	}},
	{TableVerifications, []string{
		"verification_id", "report_id", "user_id", "type", "media_urls", "comment", "created_at",
	}},
	{TableQuests, []string{
		"quest_id", "type", "title", "description", "trigger_action", "target_count",
		"xp_reward", "point_reward", "start_date", "end_date", "status", "created_at",
	}},
	{TableUserQuests, []string{
		"user_quest_id", "user_id", "quest_id", "progress", "completed",
		"completed_at", "claimed", "claimed_at", "started_at",
	}},
	{TableTeams, []string{
		"team_id", "name", "description", "leader_id", "member_ids", "total_xp",
		"level", "is_public", "created_at", "updated_at",
	}},
	{TableNotifications, []string{
		"notification_id", "user_id", "type", "title", "message", "link", "is_read", "created_at",
	}},
}

// InitTables creates every missing table with its canonical header
func InitTables(ctx context.Context, store *rowstore.Store) error {
	for _, s := range Schemas {
		if err := store.Table(s.Table).Ensure(ctx, s.Header); err != nil {
			return fmt.Errorf("failed to init table %s: %w", s.Table, err)
		}
	}
	return nil
}

// FixHeaders rewrites the header of every table to its canonical column list.
// It returns a per-table result and keeps going when one table fails.
func FixHeaders(ctx context.Context, store *rowstore.Store) map[string]string {
	results := make(map[string]string, len(Schemas))
	for _, s := range Schemas {
		if err := store.Table(s.Table).SetHeader(ctx, s.Header); err != nil {
			results[s.Table] = fmt.Sprintf("error: %v", err)
			continue
		}
		results[s.Table] = "updated"
	}
	return results
}

func stringsOrEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
