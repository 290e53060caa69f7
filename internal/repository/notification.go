package repository

import (
	"context"
	"fmt"
	"sort"

	"barrierfree-backend/internal/models"
	"barrierfree-backend/internal/rowstore"
)

// NotificationRepository handles row store operations for notifications
type NotificationRepository struct {
	table *rowstore.Table
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(store *rowstore.Store) *NotificationRepository {
	return &NotificationRepository{table: store.Table(TableNotifications)}
}

func notificationFromRecord(rec rowstore.Record) *models.Notification {
	return &models.Notification{
		ID:        rec.String("notification_id"),
		UserID:    rec.String("user_id"),
		Type:      rec.String("type"),
		Title:     rec.String("title"),
		Message:   rec.String("message"),
		Link:      rec.String("link"),
		IsRead:    rec.Bool("is_read"),
		CreatedAt: rec.Time("created_at"),
	}
}

// Create creates a new notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	err := r.table.Append(ctx, rowstore.Record{
		"notification_id": n.ID,
		"user_id":         n.UserID,
		"type":            n.Type,
		"title":           n.Title,
		"message":         n.Message,
		"link":            n.Link,
		"is_read":         n.IsRead,
		"created_at":      n.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListByUser returns a user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error) {
	recs, err := r.table.Find(ctx, func(rec rowstore.Record) bool {
		if rec.String("user_id") != userID {
			return false
		}
		return !unreadOnly || !rec.Bool("is_read")
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	out := make([]*models.Notification, len(recs))
	for i, rec := range recs {
		out[i] = notificationFromRecord(rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// GetByID retrieves a notification by ID
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	rec, err := r.table.FindOne(ctx, func(rec rowstore.Record) bool {
		return rec.String("notification_id") == id
	})
	if err != nil {
		return nil, fmt.Errorf("notification not found: %w", err)
	}
	return notificationFromRecord(rec), nil
}

// MarkRead flags a notification as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	if _, err := r.table.UpdateByID(ctx, "notification_id", id, rowstore.Record{"is_read": true}); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}
