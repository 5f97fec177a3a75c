// Package response writes the shop API's JSON bodies and its error envelope.
//
// Every failure has the same shape: a short message in "error", per-field messages in
// "fields" when a form or payload failed validation, and optionally a free-text "details".
package response

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse is the error envelope returned by the API.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
	Details string            `json:"details,omitempty"`
}

// RespondJSON sends data as JSON with the given status code.
// If data is nil only the status is written (204 No Content).
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			zap.L().Warn("failed to encode JSON response", zap.Error(err))
		}
	}
}

// RespondError sends an error envelope with an optional free-text detail.
//
//	response.RespondError(w, http.StatusNotFound, "product not found", "")
func RespondError(w http.ResponseWriter, status int, message, details string) {
	RespondJSON(w, status, ErrorResponse{
		Error:   message,
		Details: details,
	})
}

// RespondFieldErrors sends a 400 listing the message for each rejected field.
//
//	response.RespondFieldErrors(w, map[string]string{"stock": "stock cannot be negative"})
func RespondFieldErrors(w http.ResponseWriter, fields map[string]string) {
	RespondJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:  "validation failed",
		Fields: fields,
	})
}
