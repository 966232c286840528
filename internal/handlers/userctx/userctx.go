package userctx

import (
	"context"

	"github.com/nkiryanov/blogapi/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// Create a new context with the authenticated user projection
func New(ctx context.Context, u models.PublicUser) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// Extract the user from the context
func FromContext(ctx context.Context) (models.PublicUser, bool) {
	u, ok := ctx.Value(userKey).(models.PublicUser)
	return u, ok
}
