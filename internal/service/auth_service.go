package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/apperrors"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/auth"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/model"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/repository"
)

// MinPasswordLength is the shortest accepted operator password.
const MinPasswordLength = 8

// AuthService signs operators in and verifies their sessions.
type AuthService struct {
	userRepo *repository.UserRepository
	sessions *auth.SessionManager
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService with the provided dependencies.
func NewAuthService(userRepo *repository.UserRepository, sessions *auth.SessionManager, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{userRepo: userRepo, sessions: sessions, logger: logger}
}

// Login checks the credentials and issues a session token.
// Unknown emails and wrong passwords both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, auth.Session, error) {
	email = normalizeEmail(email)

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		s.logger.Info("sign-in rejected", zap.String("email", email))
		return "", auth.Session{}, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return "", auth.Session{}, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		s.logger.Info("sign-in rejected", zap.String("email", email))
		return "", auth.Session{}, apperrors.ErrInvalidCredentials
	}

	session := auth.Session{UserID: user.ID, Email: user.Email, IssuedAt: time.Now().UTC()}
	token, err := s.sessions.Issue(session)
	if err != nil {
		return "", auth.Session{}, err
	}
	return token, session, nil
}

// Authenticate verifies a session token and checks that its account still exists under the
// same email. Removing or renaming the operator revokes every token issued to it.
func (s *AuthService) Authenticate(ctx context.Context, token string) (auth.Session, error) {
	session, err := s.sessions.Verify(token)
	if err != nil {
		return auth.Session{}, apperrors.ErrNotAuthenticated
	}

	user, err := s.userRepo.GetUserByID(ctx, session.UserID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		s.logger.Info("session rejected: account removed", zap.String("userId", session.UserID))
		return auth.Session{}, apperrors.ErrNotAuthenticated
	}
	if err != nil {
		return auth.Session{}, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	if user.Email != session.Email {
		s.logger.Info("session rejected: account email changed", zap.String("userId", session.UserID))
		return auth.Session{}, apperrors.ErrNotAuthenticated
	}
	return session, nil
}

// SessionTTL returns how long issued tokens stay valid.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessions.TTL()
}

// EnsureOperator makes email the single operator account: it creates the account or resets
// its password, then removes any other account so their sessions stop working.
func (s *AuthService) EnsureOperator(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: invalid operator email", apperrors.ErrValidation)
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: operator password must be at least %d characters", apperrors.ErrValidation, MinPasswordLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	err = s.userRepo.UpsertUser(ctx, model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	removed, err := s.userRepo.DeleteUsersExcept(ctx, email)
	if err != nil {
		return err
	}
	if removed > 0 {
		s.logger.Warn("removed previous operator accounts", zap.Int64("count", removed))
	}
	s.logger.Info("operator account ready", zap.String("email", email))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
