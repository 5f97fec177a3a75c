package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/apperrors"
)

// Error is a set of field-level validation failures keyed by field name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, field := range keys {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(msgs, "; ")
}

// Is makes every validation Error match apperrors.ErrValidation.
func (e *Error) Is(target error) bool {
	return target == apperrors.ErrValidation
}

// errorOrNil returns nil when no field failed.
func errorOrNil(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &Error{Fields: fields}
}
