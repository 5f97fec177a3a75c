package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/apperrors"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/auth"
)

// runInTx executes fn inside a database transaction. The transaction is committed when fn
// returns nil and rolled back otherwise, so callers see either every write or none.
//
// The connection pool holds a single connection: fn must only use repositories scoped
// with WithTx(tx), never the pool directly.
func runInTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", apperrors.ErrStorageUnavailable, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// requireSession fails with ErrNotAuthenticated unless ctx carries a signed-in session.
func requireSession(ctx context.Context) error {
	if _, ok := auth.SessionFromContext(ctx); !ok {
		return apperrors.ErrNotAuthenticated
	}
	return nil
}

// reportError logs a failed operation. Permission failures carry the collection, path and,
// in development, the attempted payload; the error returned to callers never does.
func reportError(logger *zap.Logger, development bool, operation string, err error) {
	if logger == nil || err == nil {
		return
	}

	var permErr *apperrors.PermissionError
	if errors.As(err, &permErr) {
		fields := []zap.Field{
			zap.String("operation", operation),
			zap.String("storeOperation", permErr.Operation),
			zap.String("collection", permErr.Collection),
			zap.String("path", permErr.Path),
			zap.NamedError("cause", permErr.Err),
		}
		if development {
			fields = append(fields, zap.Any("payload", permErr.Resource))
		}
		logger.Error("permission denied", fields...)
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrOutOfStock),
		errors.Is(err, apperrors.ErrNotAuthenticated):
		logger.Debug("operation rejected", zap.String("operation", operation), zap.Error(err))
	default:
		logger.Error("operation failed", zap.String("operation", operation), zap.Error(err))
	}
}
