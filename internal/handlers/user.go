package handlers

import (
	"net/http"

	"barrierfree-backend/internal/middleware"
	"barrierfree-backend/internal/services"
)

// UserHandler handles sign-in and profile requests
type UserHandler struct {
	identity *services.IdentityService
}

// NewUserHandler creates a new user handler
func NewUserHandler(identity *services.IdentityService) *UserHandler {
	return &UserHandler{
		identity: identity,
	}
}

// SignIn handles POST /api/v1/auth/signin, called by the identity gateway
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req services.Assertion
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.identity.SignIn(r.Context(), req)
	if err != nil {
		respondAppError(w, r, err, "Failed to sign in")
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	respondJSON(w, status, res)
}

// Me handles GET /api/v1/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.identity.GetUser(r.Context(), userID)
	if err != nil {
		respondAppError(w, r, err, "Failed to get user")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// UpdatePushToken handles PUT /api/v1/me/push-token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.identity.UpdatePushToken(r.Context(), middleware.GetUserID(r.Context()), req.Token); err != nil {
		respondAppError(w, r, err, "Failed to update push token")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
