// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/expentra/expentra/internal/handler/dto"
)

// Handler serves the public informational endpoints.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Hello is the service info endpoint.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"message": "Hello from Expentra!",
		"version": "0.1.0",
	}
	writeJSON(w, http.StatusOK, response)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, dto.DetailResponse{Detail: "Not found."})
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, dto.DetailResponse{
		Detail: `Method "` + r.Method + `" not allowed.`,
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log error in production, for now just ignore
		_ = err
	}
}

// writeNotFound writes the canonical 404 body.
func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, dto.DetailResponse{Detail: "Not found."})
}

// writeParseError writes the 400 body for malformed JSON.
func writeParseError(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, dto.DetailResponse{Detail: "JSON parse error."})
}
