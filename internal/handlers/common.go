package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"barrierfree-backend/internal/apperrors"

	"github.com/rs/zerolog/log"
)

const maxJSONBody = 1 << 20

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondAppError maps a service error to its status code and logs server side failures
func respondAppError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	code := apperrors.CodeOf(err)
	status := apperrors.HTTPStatus(code)

	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("path", r.URL.Path).
			Str("code", code).
			Msg(msg)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: apperrors.PublicMessage(err), Code: code})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// decodeJSON decodes a bounded request body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(dst)
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) {
		respondError(w, "Request body required", http.StatusBadRequest)
		return false
	}
	respondError(w, "Invalid request body", http.StatusBadRequest)
	return false
}
