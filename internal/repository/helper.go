package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/apperrors"
)

// timeLayout is fixed width so stored timestamps sort chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// querier is satisfied by both *sqlx.DB and *sqlx.Tx.
type querier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
}

// FormatTime renders t as stored in the database.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// ParseTime parses a stored timestamp. It also accepts RFC3339 and "2006-01-02" values
// written by older versions.
func ParseTime(str string) (time.Time, error) {
	returnTime, err := time.Parse(time.RFC3339Nano, str)
	if err != nil {
		returnTime, err = time.Parse("2006-01-02", str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}
	return returnTime.UTC(), nil
}

// parseTimeOrZero is used on the read path: an unreadable timestamp becomes the zero
// time instead of failing the whole listing.
func parseTimeOrZero(str string) time.Time {
	t, err := ParseTime(str)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseDecimal(field, str string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(str)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", field, str, err)
	}
	return d, nil
}

// translateError converts sqlite access-rule failures into a PermissionError carrying
// the operation context. Other errors are returned unchanged.
func translateError(err error, operation, collection, path string, resource any) error {
	if err == nil {
		return nil
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_READONLY, sqlite3.SQLITE_PERM, sqlite3.SQLITE_AUTH:
			return &apperrors.PermissionError{
				Operation:  operation,
				Collection: collection,
				Path:       path,
				Resource:   resource,
				Err:        err,
			}
		}
	}
	return err
}
