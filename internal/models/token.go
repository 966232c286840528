package models

import (
	"time"

	"github.com/google/uuid"
)

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issues by TokenManager, AuthService
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

// Stored refresh token of the user
// There is at most one record for every user: the last issued refresh token
type RefreshSession struct {
	UserID    uuid.UUID
	Token     string
	UpdatedAt time.Time
}

// Authenticated user with the freshly issued tokens
type Session struct {
	User   User
	Tokens TokenPair
}
