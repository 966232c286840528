package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrors_Classes(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		class error
	}{
		{"email taken is conflict", ErrEmailTaken, ErrConflict},
		{"username taken is conflict", ErrUsernameTaken, ErrConflict},
		{"user exists is conflict", ErrUserExists, ErrConflict},
		{"invalid credentials is unauthorized", ErrInvalidCredentials, ErrUnauthorized},
		{"invalid token is unauthorized", ErrTokenInvalid, ErrUnauthorized},
		{"expired token is unauthorized", ErrTokenExpired, ErrUnauthorized},
		{"mismatched refresh is unauthorized", ErrRefreshTokenMismatch, ErrUnauthorized},
		{"no session is unauthorized", ErrNoSession, ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("service error: %w", tt.err)

			require.ErrorIs(t, wrapped, tt.class)
			require.ErrorIs(t, wrapped, tt.err)
		})
	}
}

func TestErrors_ValidationError(t *testing.T) {
	err := NewValidationError(map[string]string{
		"password": "Invalid value",
		"email":    "This field is required",
	})

	require.ErrorIs(t, err, ErrValidation)
	require.NotErrorIs(t, err, ErrConflict)
	require.Equal(t, "validation failed: email: This field is required; password: Invalid value", err.Error())

	var vErr *ValidationError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &vErr), "should be extracted from wrapped error")
	require.Len(t, vErr.Fields, 2)
}

func TestErrors_Storage(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		require.NoError(t, Storage(nil))
	})

	t.Run("keep original error", func(t *testing.T) {
		driverErr := errors.New("connection refused")

		err := Storage(driverErr)

		require.ErrorIs(t, err, ErrStorage)
		require.ErrorIs(t, err, driverErr)
		require.Contains(t, err.Error(), "connection refused")
	})
}
