// Package services holds the operations behind the HTTP API and the operator
// CLI. Each service owns its transactions and turns store and engine results
// into the errors handlers map to status codes.
package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrHabitInactive      = errors.New("habit is not active")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// invalid wraps ErrValidation with a client-facing detail.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
