package service_test

import (
	"errors"
	"testing"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/apperrors"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/testutil"
)

func TestAuthService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestServices(t, db)
	ctx := t.Context()

	if err := svc.Auth.EnsureOperator(ctx, " Owner@Example.com ", "correct-horse"); err != nil {
		t.Fatalf("EnsureOperator() error: %v", err)
	}

	t.Run("login issues a verifiable token", func(t *testing.T) {
		token, session, err := svc.Auth.Login(ctx, "owner@example.com", "correct-horse")
		if err != nil {
			t.Fatalf("Login() error: %v", err)
		}
		if session.Email != "owner@example.com" {
			t.Errorf("session email = %q", session.Email)
		}

		verified, err := svc.Auth.Authenticate(ctx, token)
		if err != nil {
			t.Fatalf("Authenticate() error: %v", err)
		}
		if verified.UserID != session.UserID {
			t.Errorf("Authenticate() user = %s, want %s", verified.UserID, session.UserID)
		}
	})

	t.Run("wrong password and unknown user look the same", func(t *testing.T) {
		_, _, errWrong := svc.Auth.Login(ctx, "owner@example.com", "wrong")
		_, _, errUnknown := svc.Auth.Login(ctx, "nobody@example.com", "correct-horse")
		if !errors.Is(errWrong, apperrors.ErrInvalidCredentials) || !errors.Is(errUnknown, apperrors.ErrInvalidCredentials) {
			t.Errorf("Login() errors = %v / %v, want ErrInvalidCredentials", errWrong, errUnknown)
		}
	})

	t.Run("password reset on restart", func(t *testing.T) {
		if err := svc.Auth.EnsureOperator(ctx, "owner@example.com", "new-password"); err != nil {
			t.Fatalf("EnsureOperator() error: %v", err)
		}
		if _, _, err := svc.Auth.Login(ctx, "owner@example.com", "new-password"); err != nil {
			t.Errorf("Login() with new password error: %v", err)
		}
		testutil.AssertRowCount(t, db, "app_user", 1)
	})

	t.Run("garbage token", func(t *testing.T) {
		if _, err := svc.Auth.Authenticate(ctx, "nope"); !errors.Is(err, apperrors.ErrNotAuthenticated) {
			t.Errorf("Authenticate() error = %v, want ErrNotAuthenticated", err)
		}
	})

	t.Run("tokens die with their account", func(t *testing.T) {
		token, _, err := svc.Auth.Login(ctx, "owner@example.com", "new-password")
		if err != nil {
			t.Fatalf("Login() error: %v", err)
		}

		if err := svc.Auth.EnsureOperator(ctx, "manager@example.com", "correct-horse"); err != nil {
			t.Fatalf("EnsureOperator() error: %v", err)
		}
		testutil.AssertRowCount(t, db, "app_user", 1)

		if _, err := svc.Auth.Authenticate(ctx, token); !errors.Is(err, apperrors.ErrNotAuthenticated) {
			t.Errorf("Authenticate() with removed account error = %v, want ErrNotAuthenticated", err)
		}
		if _, _, err := svc.Auth.Login(ctx, "owner@example.com", "new-password"); !errors.Is(err, apperrors.ErrInvalidCredentials) {
			t.Errorf("Login() as removed account error = %v, want ErrInvalidCredentials", err)
		}

		fresh, _, err := svc.Auth.Login(ctx, "manager@example.com", "correct-horse")
		if err != nil {
			t.Fatalf("Login() error: %v", err)
		}
		if _, err := svc.Auth.Authenticate(ctx, fresh); err != nil {
			t.Errorf("Authenticate() with current account error: %v", err)
		}
	})

	t.Run("token with a stale email is rejected", func(t *testing.T) {
		token, _, err := svc.Auth.Login(ctx, "manager@example.com", "correct-horse")
		if err != nil {
			t.Fatalf("Login() error: %v", err)
		}
		if _, err := db.Exec(`UPDATE app_user SET email = 'renamed@example.com'`); err != nil {
			t.Fatalf("rename: %v", err)
		}

		if _, err := svc.Auth.Authenticate(ctx, token); !errors.Is(err, apperrors.ErrNotAuthenticated) {
			t.Errorf("Authenticate() error = %v, want ErrNotAuthenticated", err)
		}
	})

	t.Run("weak operator password", func(t *testing.T) {
		if err := svc.Auth.EnsureOperator(ctx, "owner@example.com", "short"); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("EnsureOperator() error = %v, want validation error", err)
		}
	})
}
