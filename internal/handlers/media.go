package handlers

import (
	"net/http"

	"barrierfree-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// MediaHandler handles uploads and image analysis
type MediaHandler struct {
	mediaService *services.MediaService
	analyzer     *services.Analyzer
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(mediaService *services.MediaService, analyzer *services.Analyzer) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		analyzer:     analyzer,
	}
}

// Upload handles POST /api/v1/upload (multipart form, field "file")
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxUploadSize+(1<<20))

	if err := r.ParseMultipartForm(services.MaxUploadSize); err != nil {
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := services.ReadUpload(file)
	if err != nil {
		respondAppError(w, r, err, "Failed to read upload")
		return
	}

	res, err := h.mediaService.Upload(r.Context(), header.Filename, data)
	if err != nil {
		respondAppError(w, r, err, "Failed to upload file")
		return
	}

	if res.Placeholder {
		log.Warn().Str("filename", header.Filename).Msg("Object storage not configured, returning placeholder URL")
	}

	respondJSON(w, http.StatusOK, res)
}

// Presign handles POST /api/v1/upload/presign
func (h *MediaHandler) Presign(w http.ResponseWriter, r *http.Request) {
	var req services.PresignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.mediaService.PresignUpload(r.Context(), req)
	if err != nil {
		respondAppError(w, r, err, "Failed to generate pre-signed URL")
		return
	}

	respondJSON(w, http.StatusOK, res)
}

// AnalyzeImage handles POST /api/v1/analyze-image
func (h *MediaHandler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	var req services.AnalyzeImageInput
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.analyzer.AnalyzeImage(r.Context(), req)
	if err != nil {
		respondAppError(w, r, err, "Failed to analyze image")
		return
	}

	respondJSON(w, http.StatusOK, res)
}

// ClassifyText handles POST /api/v1/classify-text
func (h *MediaHandler) ClassifyText(w http.ResponseWriter, r *http.Request) {
	var req services.ClassifyTextInput
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.analyzer.ClassifyText(r.Context(), req)
	if err != nil {
		respondAppError(w, r, err, "Failed to classify text")
		return
	}

	respondJSON(w, http.StatusOK, res)
}
