package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/api/response"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/apperrors"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/auth"
)

// Authenticator verifies session tokens against the current operator accounts.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.Session, error)
}

// RequireSession rejects requests without a valid session token with 401 and stores the
// session in the request context otherwise.
//
// The token is read from "Authorization: Bearer <token>". EventSource clients cannot set
// headers, so GET requests may pass it as the access_token query parameter instead.
func RequireSession(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				response.RespondError(w, http.StatusUnauthorized, "not authenticated", "Missing session token")
				return
			}

			session, err := authenticator.Authenticate(r.Context(), token)
			if errors.Is(err, apperrors.ErrNotAuthenticated) {
				response.RespondError(w, http.StatusUnauthorized, "not authenticated", "Session is invalid or expired")
				return
			}
			if err != nil {
				response.RespondServiceError(w, err, "failed to verify session")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	if r.Method == http.MethodGet {
		return r.URL.Query().Get("access_token")
	}
	return ""
}
