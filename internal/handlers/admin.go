package handlers

import (
	"net/http"

	"barrierfree-backend/internal/repository"
	"barrierfree-backend/internal/rowstore"
	"barrierfree-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AdminHandler handles table maintenance and demo data requests
type AdminHandler struct {
	store       *rowstore.Store
	demoService *services.DemoService
}

// NewAdminHandler creates a new admin handler. demoService may be nil when
// demo endpoints are disabled.
func NewAdminHandler(store *rowstore.Store, demoService *services.DemoService) *AdminHandler {
	return &AdminHandler{
		store:       store,
		demoService: demoService,
	}
}

// InitTables handles POST /api/v1/admin/init-tables
func (h *AdminHandler) InitTables(w http.ResponseWriter, r *http.Request) {
	if err := repository.InitTables(r.Context(), h.store); err != nil {
		log.Error().Err(err).Msg("Failed to init tables")
		respondError(w, "Failed to init tables", http.StatusBadGateway)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"tables":  len(repository.Schemas),
	})
}

// FixHeaders handles POST /api/v1/admin/fix-headers
func (h *AdminHandler) FixHeaders(w http.ResponseWriter, r *http.Request) {
	results := repository.FixHeaders(r.Context(), h.store)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
	})
}

// InitDemo handles POST /api/v1/demo/init
func (h *AdminHandler) InitDemo(w http.ResponseWriter, r *http.Request) {
	res, err := h.demoService.InitDemo(r.Context())
	if err != nil {
		respondAppError(w, r, err, "Failed to init demo data")
		return
	}

	respondJSON(w, http.StatusCreated, res)
}

// ResetDemo handles POST /api/v1/demo/reset
func (h *AdminHandler) ResetDemo(w http.ResponseWriter, r *http.Request) {
	res, err := h.demoService.ResetDemo(r.Context())
	if err != nil {
		respondAppError(w, r, err, "Failed to reset demo data")
		return
	}

	respondJSON(w, http.StatusOK, res)
}

// DemoAccounts handles GET /api/v1/demo/accounts
func (h *AdminHandler) DemoAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.demoService.Accounts(r.Context())
	if err != nil {
		respondAppError(w, r, err, "Failed to list demo accounts")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": accounts,
	})
}
