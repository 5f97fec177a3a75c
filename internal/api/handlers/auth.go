package handlers

import (
	"net/http"
	"time"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/api/request"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/api/response"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/apperrors"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/auth"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/service"
)

// AuthHandler handles operator sign-in.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SessionResponse describes the signed-in operator.
type SessionResponse struct {
	UserID   string    `json:"userId"`
	Email    string    `json:"email"`
	IssuedAt time.Time `json:"issuedAt"`
}

// LoginResponse carries the session token returned by Login.
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Session   SessionResponse `json:"session"`
}

func newSessionResponse(s auth.Session) SessionResponse {
	return SessionResponse{UserID: s.UserID, Email: s.Email, IssuedAt: s.IssuedAt}
}

// Login handles POST requests exchanging credentials for a session token.
//
// Endpoint: POST /api/auth/login
// Request Body: LoginRequest (email, password)
// Response: 200 OK with LoginResponse
// Error: 400 Bad Request if the body is invalid
// Error: 401 Unauthorized if the credentials do not match
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.LoginRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	token, session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondServiceError(w, err, "failed to sign in")
		return
	}

	response.RespondJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: session.IssuedAt.Add(h.authService.SessionTTL()),
		Session:   newSessionResponse(session),
	})
}

// Logout handles POST requests ending a session. Tokens are stateless, so the client
// discarding its token is the whole sign-out.
//
// Endpoint: POST /api/auth/logout
// Response: 204 No Content
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Session handles GET requests for the current operator.
//
// Endpoint: GET /api/auth/session
// Response: 200 OK with SessionResponse
// Error: 401 Unauthorized without a session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		response.RespondServiceError(w, apperrors.ErrNotAuthenticated, "")
		return
	}
	response.RespondJSON(w, http.StatusOK, newSessionResponse(session))
}
