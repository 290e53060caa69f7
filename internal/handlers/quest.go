package handlers

import (
	"net/http"

	"barrierfree-backend/internal/middleware"
	"barrierfree-backend/internal/services"
)

// QuestHandler handles quest requests
type QuestHandler struct {
	questService *services.QuestService
}

// NewQuestHandler creates a new quest handler
func NewQuestHandler(questService *services.QuestService) *QuestHandler {
	return &QuestHandler{
		questService: questService,
	}
}

// ListQuests handles GET /api/v1/quests; signed-in callers get their progress
func (h *QuestHandler) ListQuests(w http.ResponseWriter, r *http.Request) {
	quests, err := h.questService.ListActiveQuests(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondAppError(w, r, err, "Failed to list quests")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"quests": quests,
	})
}

// CreateQuest handles POST /api/v1/quests
func (h *QuestHandler) CreateQuest(w http.ResponseWriter, r *http.Request) {
	var req services.CreateQuestInput
	if !decodeJSON(w, r, &req) {
		return
	}

	quest, err := h.questService.CreateQuest(r.Context(), req)
	if err != nil {
		respondAppError(w, r, err, "Failed to create quest")
		return
	}

	respondJSON(w, http.StatusCreated, quest)
}

// ClaimReward handles POST /api/v1/quests/claim
func (h *QuestHandler) ClaimReward(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuestID string `json:"quest_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.questService.ClaimReward(r.Context(), middleware.GetUserID(r.Context()), req.QuestID)
	if err != nil {
		respondAppError(w, r, err, "Failed to claim reward")
		return
	}

	respondJSON(w, http.StatusOK, res)
}

// InitSample handles POST /api/v1/quests/init-sample
func (h *QuestHandler) InitSample(w http.ResponseWriter, r *http.Request) {
	res, err := h.questService.SeedSampleQuests(r.Context())
	if err != nil {
		respondAppError(w, r, err, "Failed to seed quests")
		return
	}

	respondJSON(w, http.StatusOK, res)
}
