package response

import (
	"errors"
	"net/http"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/apperrors"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/validation"
)

// StatusFor maps an error kind to an HTTP status and a caller-facing message.
// Permission failures get a generic message; the details are in the server log.
func StatusFor(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, "validation failed"
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, apperrors.ErrInvalidCredentials.Error()
	case errors.Is(err, apperrors.ErrNotAuthenticated):
		return http.StatusUnauthorized, "not authenticated"
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, "permission denied"
	case errors.Is(err, apperrors.ErrProductNotFound):
		return http.StatusNotFound, apperrors.ErrProductNotFound.Error()
	case errors.Is(err, apperrors.ErrTransactionNotFound):
		return http.StatusNotFound, apperrors.ErrTransactionNotFound.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, apperrors.ErrNotFound.Error()
	case errors.Is(err, apperrors.ErrOutOfStock):
		return http.StatusConflict, apperrors.ErrOutOfStock.Error()
	case errors.Is(err, apperrors.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, apperrors.ErrStorageUnavailable.Error()
	default:
		return http.StatusInternalServerError, fallback
	}
}

// RespondServiceError writes the envelope for a failed service call.
// Field validation failures list their fields; auth and permission failures carry no details.
func RespondServiceError(w http.ResponseWriter, err error, fallback string) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		RespondFieldErrors(w, verr.Fields)
		return
	}

	status, message := StatusFor(err, fallback)
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		RespondError(w, status, message, "")
	default:
		RespondError(w, status, message, err.Error())
	}
}
