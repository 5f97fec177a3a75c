package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/apperrors"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/model"
)

type userRow struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	CreatedAt    string `db:"created_at"`
}

// UserRepository provides data access methods for operator accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository with the provided database connection.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetUserByEmail retrieves an operator account by email.
// Returns ErrUserNotFound if no account matches.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getUser(ctx, `SELECT id, email, password_hash, created_at FROM app_user WHERE email = ?`, email)
}

// GetUserByID retrieves an operator account by id.
// Returns ErrUserNotFound if no account matches.
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (model.User, error) {
	return r.getUser(ctx, `SELECT id, email, password_hash, created_at FROM app_user WHERE id = ?`, id)
}

func (r *UserRepository) getUser(ctx context.Context, query string, arg string) (model.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, apperrors.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return model.User{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    parseTimeOrZero(row.CreatedAt),
	}, nil
}

// UpsertUser inserts an account, or replaces the password hash of the account with the same email.
func (r *UserRepository) UpsertUser(ctx context.Context, u model.User) error {
	query := `
		INSERT INTO app_user (id, email, password_hash, created_at)
		VALUES (:id, :email, :password_hash, :created_at)
		ON CONFLICT(email) DO UPDATE SET password_hash = excluded.password_hash
	`
	row := userRow{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    FormatTime(u.CreatedAt),
	}
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// DeleteUsersExcept removes every account whose email differs from email and returns how
// many were removed.
func (r *UserRepository) DeleteUsersExcept(ctx context.Context, email string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM app_user WHERE email <> ?`, email)
	if err != nil {
		return 0, fmt.Errorf("failed to delete users: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted users: %w", err)
	}
	return n, nil
}
