package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// NewCORS allows the shop frontend origins to call the API.
//
// Sessions travel as bearer tokens, never cookies, so credentials stay disabled. The
// download endpoints name their file in Content-Disposition, which must be exposed for the
// browser to read it. Last-Event-ID lets an EventSource resume the dashboard stream.
func NewCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Last-Event-ID"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         600,
	})
}
