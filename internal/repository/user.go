package repository

import (
	"context"
	"fmt"
	"strings"

	"barrierfree-backend/internal/models"
	"barrierfree-backend/internal/rowstore"
)

// UserRepository handles row store operations for users
type UserRepository struct {
	table *rowstore.Table
}

// NewUserRepository creates a new user repository
func NewUserRepository(store *rowstore.Store) *UserRepository {
	return &UserRepository{table: store.Table(TableUsers)}
}

func userToRecord(u *models.User) rowstore.Record {
	return rowstore.Record{
		"user_id":               u.ID,
		"email":                 u.Email,
		"name":                  u.Name,
		"nickname":              u.Nickname,
		"provider":              u.Provider,
		"avatar_items":          stringsOrEmpty(u.AvatarItems),
		"accessibility_profile": u.AccessibilityProfile,
		"xp":                    u.XP,
		"level":                 u.Level,
		"points":                u.Points,
		"titles":                stringsOrEmpty(u.Titles),
		"team_id":               u.TeamID,
		"push_token":            u.PushToken,
		"created_at":            u.CreatedAt,
		"last_login":            u.LastLogin,
	}
}

func userFromRecord(rec rowstore.Record) *models.User {
	level := rec.Int("level")
	if level < 1 {
		level = models.LevelForXP(rec.Int("xp"))
	}
	return &models.User{
		ID:                   rec.String("user_id"),
		Email:                rec.String("email"),
		Name:                 rec.String("name"),
		Nickname:             rec.String("nickname"),
		Provider:             rec.String("provider"),
		AvatarItems:          stringsOrEmpty(rec.Strings("avatar_items")),
		AccessibilityProfile: rec.String("accessibility_profile"),
		XP:                   rec.Int("xp"),
		Level:                level,
		Points:               rec.Int("points"),
		Titles:               stringsOrEmpty(rec.Strings("titles")),
		TeamID:               rec.String("team_id"),
		PushToken:            rec.String("push_token"),
		CreatedAt:            rec.Time("created_at"),
		LastLogin:            rec.Time("last_login"),
	}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.table.Append(ctx, userToRecord(user)); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// CreateMany creates users in batches
func (r *UserRepository) CreateMany(ctx context.Context, users []*models.User) (int, error) {
	recs := make([]rowstore.Record, len(users))
	for i, u := range users {
		recs[i] = userToRecord(u)
	}
	n, err := r.table.AppendMany(ctx, recs)
	if err != nil {
		return n, fmt.Errorf("failed to create users: %w", err)
	}
	return n, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	rec, err := r.table.FindOne(ctx, func(rec rowstore.Record) bool {
		return rec.String("user_id") == id
	})
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return userFromRecord(rec), nil
}

// GetByEmail retrieves a user by exact email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	rec, err := r.table.FindOne(ctx, func(rec rowstore.Record) bool {
		return rec.String("email") == email
	})
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return userFromRecord(rec), nil
}

// ListByEmailSuffix returns users whose email ends with suffix
func (r *UserRepository) ListByEmailSuffix(ctx context.Context, suffix string) ([]*models.User, error) {
	recs, err := r.table.Find(ctx, func(rec rowstore.Record) bool {
		return strings.HasSuffix(rec.String("email"), suffix)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]*models.User, len(recs))
	for i, rec := range recs {
		users[i] = userFromRecord(rec)
	}
	return users, nil
}

// UpdateProgress writes xp, level and points
func (r *UserRepository) UpdateProgress(ctx context.Context, id string, xp, level, points int) error {
	_, err := r.table.UpdateByID(ctx, "user_id", id, rowstore.Record{
		"xp":     xp,
		"level":  level,
		"points": points,
	})
	if err != nil {
		return fmt.Errorf("failed to update user progress: %w", err)
	}
	return nil
}

// Update merges arbitrary fields into the user row
func (r *UserRepository) Update(ctx context.Context, id string, patch rowstore.Record) error {
	if _, err := r.table.UpdateByID(ctx, "user_id", id, patch); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// DeleteByEmailSuffix removes users whose email ends with suffix
func (r *UserRepository) DeleteByEmailSuffix(ctx context.Context, suffix string) (int, error) {
	n, err := r.table.DeleteWhere(ctx, func(rec rowstore.Record) bool {
		return strings.HasSuffix(rec.String("email"), suffix)
	})
	if err != nil {
		return n, fmt.Errorf("failed to delete users: %w", err)
	}
	return n, nil
}
