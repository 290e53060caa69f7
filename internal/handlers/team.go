package handlers

import (
	"net/http"

	"barrierfree-backend/internal/middleware"
	"barrierfree-backend/internal/services"
)

// TeamHandler handles team requests
type TeamHandler struct {
	teamService *services.TeamService
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
	}
}

// CreateTeam handles POST /api/v1/teams
func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req services.CreateTeamInput
	if !decodeJSON(w, r, &req) {
		return
	}

	team, err := h.teamService.CreateTeam(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		respondAppError(w, r, err, "Failed to create team")
		return
	}

	respondJSON(w, http.StatusCreated, team)
}

// JoinTeam handles POST /api/v1/teams/join
func (h *TeamHandler) JoinTeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TeamID string `json:"team_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	team, err := h.teamService.JoinTeam(r.Context(), middleware.GetUserID(r.Context()), req.TeamID)
	if err != nil {
		respondAppError(w, r, err, "Failed to join team")
		return
	}

	respondJSON(w, http.StatusOK, team)
}

// ListTeams handles GET /api/v1/teams?search=&member_id=
func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	teams, err := h.teamService.ListTeams(r.Context(), services.TeamFilter{
		Search:       q.Get("search"),
		MemberUserID: q.Get("member_id"),
	})
	if err != nil {
		respondAppError(w, r, err, "Failed to list teams")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"teams": teams,
	})
}
