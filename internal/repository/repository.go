package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/models"
)

// User fields that are unique and may be checked for existence
const (
	FieldUsername = "username"
	FieldEmail    = "email"
)

type CreateUserParams struct {
	Username       string
	Name           string
	Email          string
	HashedPassword string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with same username or email exists has to return apperrors.ErrUserExists
	CreateUser(ctx context.Context, params CreateUserParams) (models.User, error)

	// Get user by it's id or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)

	// Check whether any user has the value in the field
	// Field must be one of FieldUsername, FieldEmail
	Exists(ctx context.Context, field string, value string) (bool, error)
}

// Refresh session repository interface
// Keeps one refresh token per user: the last issued one
type SessionRepo interface {
	// Insert or replace the user's refresh token
	Upsert(ctx context.Context, userID uuid.UUID, token string) error

	// Report whether the user's current refresh token equals token
	Exists(ctx context.Context, userID uuid.UUID, token string) (bool, error)

	// Delete session which refresh token equals token
	// Absence of such session is not an error
	DeleteByToken(ctx context.Context, token string) error
}

type Storage interface {
	User() UserRepo
	Session() SessionRepo

	// Run fn in transaction. Commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
