package handlers

import (
	"net/http"
	"strconv"

	"barrierfree-backend/internal/middleware"
	"barrierfree-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// NotificationHandler handles notification requests
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// ListNotifications handles GET /api/v1/notifications?unread=true
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))

	items, err := h.notificationService.List(r.Context(), middleware.GetUserID(r.Context()), unreadOnly)
	if err != nil {
		respondAppError(w, r, err, "Failed to list notifications")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": items,
	})
}

// MarkRead handles POST /api/v1/notifications/{notification_id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	err := h.notificationService.MarkRead(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "notification_id"))
	if err != nil {
		respondAppError(w, r, err, "Failed to mark notification read")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
