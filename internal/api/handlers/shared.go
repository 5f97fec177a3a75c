package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/api/response"
)

// maxJSONBody limits request bodies decoded by parseJSON.
const maxJSONBody = 1 << 20

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data any) {
	response.RespondJSON(w, status, data)
}

// parseJSON decodes the request body into T, rejecting unknown fields.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("invalid JSON: %w", err)
	}
	return v, nil
}
