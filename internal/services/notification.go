package services

import (
	"context"
	"errors"
	"time"

	"barrierfree-backend/internal/apperrors"
	"barrierfree-backend/internal/models"
	"barrierfree-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Notification types
const (
	NotificationLevelUp       = "level_up"
	NotificationQuestComplete = "quest_complete"
	NotificationVerification  = "verification"
	NotificationResolved      = "report_resolved"
)

// Notifier informs a user about something that happened to them
type Notifier interface {
	Notify(ctx context.Context, userID, kind, title, message, link string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string, string, string, string, string) {}

// NotificationService persists notifications and fans them out over
// WebSocket and push
type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	hub      *WSHub
	pusher   Pusher
	now      func() time.Time
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	repo *repository.NotificationRepository,
	userRepo *repository.UserRepository,
	hub *WSHub,
	pusher Pusher,
) *NotificationService {
	if pusher == nil {
		pusher = nopPusher{}
	}
	return &NotificationService{
		repo:     repo,
		userRepo: userRepo,
		hub:      hub,
		pusher:   pusher,
		now:      time.Now,
	}
}

// Notify delivers a notification; delivery failures are logged and never returned
func (s *NotificationService) Notify(ctx context.Context, userID, kind, title, message, link string) {
	n := &models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Message:   message,
		Link:      link,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, n); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("type", kind).Msg("Failed to save notification")
	}

	if s.hub != nil && s.hub.IsOnline(userID) {
		msg := WSMessage{Type: "notification", Timestamp: n.CreatedAt.UnixMilli(), Data: n}
		if err := s.hub.SendToUser(userID, msg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to send notification over WebSocket")
		}
		return
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load user for push")
		return
	}
	if user.PushToken == "" {
		return
	}

	data := map[string]string{"type": kind, "notification_id": n.ID}
	if link != "" {
		data["link"] = link
	}
	if err := s.pusher.Push(ctx, user.PushToken, title, message, data); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to push notification")
	}
}

// List returns the notifications of a user, newest first
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error) {
	items, err := s.repo.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list notifications")
	}
	return items, nil
}

// MarkRead marks a notification owned by userID as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("notification not found")
		}
		return apperrors.Wrap(err, "failed to load notification")
	}
	if n.UserID != userID {
		return apperrors.NotFound("notification not found")
	}
	if n.IsRead {
		return nil
	}
	if err := s.repo.MarkRead(ctx, notificationID); err != nil {
		return apperrors.Wrap(err, "failed to mark notification read")
	}
	return nil
}
