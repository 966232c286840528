package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error classes. Every error returned by services wraps exactly one of them,
// so the HTTP layer may choose status code with errors.Is only.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStorage      = errors.New("storage error")
)

var (
	ErrEmailTaken    = fmt.Errorf("email already registered: %w", ErrConflict)
	ErrUsernameTaken = fmt.Errorf("username not available: %w", ErrConflict)
	ErrUserExists    = fmt.Errorf("user already exists: %w", ErrConflict)

	// Same error for unknown username and wrong password
	ErrInvalidCredentials = fmt.Errorf("invalid username or password: %w", ErrUnauthorized)

	ErrUserNotFound = errors.New("user not found")

	ErrTokenInvalid         = fmt.Errorf("token is invalid: %w", ErrUnauthorized)
	ErrTokenExpired         = fmt.Errorf("token is expired: %w", ErrUnauthorized)
	ErrRefreshTokenMismatch = fmt.Errorf("refresh token is not the current one: %w", ErrUnauthorized)
	ErrNoSession            = fmt.Errorf("session cookies not found: %w", ErrUnauthorized)
)

// ValidationError describes which input fields are malformed.
// Key is the field name as client sends it, value is human readable message.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}

	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Wrap storage (db) error so it matches ErrStorage and still unwraps to the original driver error
func Storage(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("db error: %w", errors.Join(ErrStorage, err))
}
