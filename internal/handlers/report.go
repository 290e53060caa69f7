package handlers

import (
	"net/http"

	"barrierfree-backend/internal/middleware"
	"barrierfree-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// ReportHandler handles report and verification requests
type ReportHandler struct {
	reportService       *services.ReportService
	verificationService *services.VerificationService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *services.ReportService, verificationService *services.VerificationService) *ReportHandler {
	return &ReportHandler{
		reportService:       reportService,
		verificationService: verificationService,
	}
}

// CreateReport handles POST /api/v1/reports
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req services.CreateReportInput
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.reportService.CreateReport(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		respondAppError(w, r, err, "Failed to create report")
		return
	}

	respondJSON(w, http.StatusCreated, res)
}

// ListReports handles GET /api/v1/reports?type=&status=&user_id=&bbox=lat1,lng1,lat2,lng2
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := services.ReportFilter{
		Type:   q.Get("type"),
		Status: q.Get("status"),
		UserID: q.Get("user_id"),
	}

	if bbox := q.Get("bbox"); bbox != "" {
		box, err := services.ParseBoundingBox(bbox)
		if err != nil {
			respondAppError(w, r, err, "Invalid bounding box")
			return
		}
		filter.Box = box
	}

	reports, err := h.reportService.ListReports(r.Context(), filter)
	if err != nil {
		respondAppError(w, r, err, "Failed to list reports")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"total":   len(reports),
	})
}

// GetReport handles GET /api/v1/reports/{report_id}
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.GetReport(r.Context(), chi.URLParam(r, "report_id"))
	if err != nil {
		respondAppError(w, r, err, "Failed to get report")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// Verify handles POST /api/v1/verifications
func (h *ReportHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req services.VerifyInput
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.verificationService.Verify(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		respondAppError(w, r, err, "Failed to verify report")
		return
	}

	respondJSON(w, http.StatusCreated, res)
}

// ListVerifications handles GET /api/v1/verifications?report_id=
func (h *ReportHandler) ListVerifications(w http.ResponseWriter, r *http.Request) {
	items, err := h.verificationService.ListVerifications(r.Context(), r.URL.Query().Get("report_id"))
	if err != nil {
		respondAppError(w, r, err, "Failed to list verifications")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"verifications": items,
	})
}
