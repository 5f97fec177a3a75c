package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/api/middleware"
)

// TestNewCORS checks the cross-origin policy seen by the frontend.
//
// WHY: The stock CSV and backup downloads name their file in Content-Disposition, which a
// browser hides from scripts unless it is exposed. Tokens are sent as headers, so the policy
// never needs to allow credentials.
func TestNewCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="stock.csv"`)
		w.WriteHeader(http.StatusOK)
	})
	handler := middleware.NewCORS([]string{"http://localhost:5173"}).Handler(next)

	t.Run("preflight from the frontend is allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/product/1", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
		req.Header.Set("Access-Control-Request-Headers", "authorization")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Errorf("Allow-Origin = %q", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Methods"); got != http.MethodDelete {
			t.Errorf("Allow-Methods = %q, want DELETE", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
			t.Errorf("Allow-Credentials = %q, want none", got)
		}
	})

	t.Run("downloads expose their filename", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/product/export", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Expose-Headers"); got != "Content-Disposition" {
			t.Errorf("Expose-Headers = %q, want Content-Disposition", got)
		}
	})

	t.Run("unknown origin gets no grant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/product", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, want none", got)
		}
		if w.Code != http.StatusOK {
			t.Errorf("Expected the request itself to pass through, got %d", w.Code)
		}
	})
}
