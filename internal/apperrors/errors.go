package apperrors

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the service layer matches exactly one of these
// through errors.Is, which is how the HTTP layer picks a status code.
var (
	// ErrValidation indicates that input violates a product or transaction invariant.
	ErrValidation = errors.New("validation failed")

	// ErrOutOfStock indicates that a sale was attempted against a product with no stock.
	ErrOutOfStock = errors.New("product is out of stock")

	// ErrStorageUnavailable indicates that the backing store or session is not ready.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrPermissionDenied indicates that the backing store rejected the operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound indicates that a referenced record does not exist at operation time.
	ErrNotFound = errors.New("not found")
)

// Domain entity errors represent missing records. They match ErrNotFound.
var (
	// ErrProductNotFound indicates that a product with the given ID does not exist.
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)

	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)

	// ErrUserNotFound indicates that no operator account matches the given email or ID.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
)

// Business and session errors derived from the kinds above.
var (
	// ErrInvalidFormat indicates a backup snapshot that does not have the expected shape.
	ErrInvalidFormat = fmt.Errorf("%w: invalid backup format", ErrValidation)

	// ErrNotAuthenticated indicates that no authenticated session is present.
	ErrNotAuthenticated = fmt.Errorf("%w: no authenticated session", ErrStorageUnavailable)

	// ErrInvalidCredentials indicates a failed sign-in. It deliberately does not say which part was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = fmt.Errorf("%w: invalid UUID format", ErrValidation)
)

// Operation failure messages shown to API callers when the cause is not one of the kinds above.
var (
	ErrFailedToRetrieveProducts     = errors.New("failed to retrieve products")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveDashboard    = errors.New("failed to retrieve dashboard")
	ErrFailedToExportBackup         = errors.New("failed to export backup")
	ErrFailedToImportBackup         = errors.New("failed to import backup")
)

// PermissionError describes an operation the backing store refused.
// It carries enough context to debug access rules; Error() never includes the payload.
type PermissionError struct {
	Operation  string // get, list, create, update, delete
	Collection string
	Path       string
	Resource   any
	Err        error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s %s", e.Operation, e.Path)
}

// Unwrap exposes both the kind and the underlying store error.
func (e *PermissionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPermissionDenied}
	}
	return []error{ErrPermissionDenied, e.Err}
}
