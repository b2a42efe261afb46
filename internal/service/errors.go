// Package service provides business logic for documents, categories,
// users, and AI features, combining the authorization guard with the
// persistence repositories. No other component talks to storage or the
// search engine directly.
package service

import (
	"errors"
	"fmt"

	"github.com/knowdistrict/knowdistrict/internal/auth"
)

// ErrUnauthenticated is returned when no role is present at all.
// It is distinct from ErrForbidden and maps to 401.
var ErrUnauthenticated = errors.New("not authenticated")

// ErrForbidden is returned when the authorization guard denies the
// action. Expected and frequent; never logged as a system error.
var ErrForbidden = errors.New("forbidden")

// ErrValidation is returned for malformed input. Wrapped with detail via
// validationError.
var ErrValidation = errors.New("invalid input")

func validationError(detail string) error {
	return fmt.Errorf("%w: %s", ErrValidation, detail)
}

// authorize checks the caller's role against the guard before any
// storage access. Validation and authorization failures are local and
// immediate: no partial work is performed after a denial.
func authorize(role auth.Role, action auth.Action) error {
	if role == auth.RoleNone {
		return ErrUnauthenticated
	}
	if !role.Can(action) {
		return ErrForbidden
	}
	return nil
}
