package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"barrierfree-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// TokenValidator resolves a session token to a user ID
type TokenValidator interface {
	ValidateJWT(tokenString string) (string, error)
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub                 *services.WSHub
	tokens              TokenValidator
	notificationService *services.NotificationService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *services.WSHub,
	tokens TokenValidator,
	notificationService *services.NotificationService,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:                 hub,
		tokens:              tokens,
		notificationService: notificationService,
	}
}

// HandleWebSocket handles GET /ws?token=
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.tokens.ValidateJWT(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID, conn)

	ctx := r.Context()
	unread := 0
	if h.notificationService != nil {
		items, err := h.notificationService.List(ctx, userID, true)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to count unread notifications")
		}
		unread = len(items)
	}

	if err := h.hub.SendToUser(userID, services.WSMessage{
		Type:      "connected",
		Timestamp: time.Now().UnixMilli(),
		Data: map[string]interface{}{
			"unread": unread,
		},
	}); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send connected message")
	}

	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			h.sendError(userID, "Invalid message format")
			continue
		}

		switch msg.Type {
		case "ping":
			h.reply(userID, services.WSMessage{Type: "pong", Timestamp: time.Now().UnixMilli()})
		default:
			h.sendError(userID, "Unknown message type")
		}
	}
}

func (h *WebSocketHandler) reply(userID string, msg services.WSMessage) {
	if err := h.hub.SendToUser(userID, msg); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("type", msg.Type).Msg("Failed to send WebSocket message")
	}
}

// sendError sends an error message to the user's connection
func (h *WebSocketHandler) sendError(userID, message string) {
	h.reply(userID, services.WSMessage{
		Type:    "error",
		Message: message,
	})
}
