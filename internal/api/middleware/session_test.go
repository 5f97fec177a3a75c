package middleware_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/api/middleware"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/apperrors"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/auth"
)

type stubAuthenticator map[string]auth.Session

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (auth.Session, error) {
	if token == "storage-down" {
		return auth.Session{}, fmt.Errorf("%w: locked", apperrors.ErrStorageUnavailable)
	}
	session, ok := s[token]
	if !ok {
		return auth.Session{}, fmt.Errorf("bad token: %w", apperrors.ErrNotAuthenticated)
	}
	return session, nil
}

func TestRequireSession(t *testing.T) {
	operator := auth.Session{UserID: "u-1", Email: "owner@example.com"}
	authenticator := stubAuthenticator{"good-token": operator}

	tests := []struct {
		name        string
		method      string
		target      string
		header      string
		wantStatus  int
		wantDetails string
	}{
		{"rejects request without token", http.MethodGet, "/test", "", http.StatusUnauthorized, "Missing session token"},
		{"rejects non-bearer scheme", http.MethodGet, "/test", "Basic good-token", http.StatusUnauthorized, "Missing session token"},
		{"rejects invalid token", http.MethodGet, "/test", "Bearer nope", http.StatusUnauthorized, "Session is invalid or expired"},
		{"accepts bearer token", http.MethodGet, "/test", "Bearer good-token", http.StatusOK, ""},
		{"accepts lowercase scheme", http.MethodPost, "/test", "bearer good-token", http.StatusOK, ""},
		{"accepts query token on GET", http.MethodGet, "/test?access_token=good-token", "", http.StatusOK, ""},
		{"ignores query token on POST", http.MethodPost, "/test?access_token=good-token", "", http.StatusUnauthorized, "Missing session token"},
		{"reports storage failure as unavailable", http.MethodGet, "/test", "Bearer storage-down", http.StatusServiceUnavailable, "storage unavailable: locked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got auth.Session
			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				got, _ = auth.SessionFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			middleware.RequireSession(authenticator)(next).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus != http.StatusOK {
				if handlerCalled {
					t.Error("Expected request not to complete.")
				}
				var response map[string]string
				//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
				json.NewDecoder(w.Body).Decode(&response)
				if response["details"] != tt.wantDetails {
					t.Errorf("Expected details %q, got %q", tt.wantDetails, response["details"])
				}
				return
			}
			if got != operator {
				t.Errorf("session in context = %+v, want %+v", got, operator)
			}
		})
	}
}
