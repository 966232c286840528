package postgres

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/blogapi/internal/apperrors"
)

type SessionRepo struct {
	DB DBTX
}

const upsertSession = `-- name: UpsertSession
INSERT INTO sessions (user_id, token, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE
SET token = EXCLUDED.token, updated_at = EXCLUDED.updated_at
`

// Single statement, so concurrent upserts for one user end with the last writer's token
func (r *SessionRepo) Upsert(ctx context.Context, userID uuid.UUID, token string) error {
	_, err := r.DB.Exec(ctx, upsertSession, userID, token)
	if err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

const getSessionToken = `-- name: GetSessionToken
SELECT token FROM sessions
WHERE user_id = $1
`

// Tokens are compared in constant time, not by the database
func (r *SessionRepo) Exists(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	var stored string
	err := r.DB.QueryRow(ctx, getSessionToken, userID).Scan(&stored)

	switch {
	case err == nil:
		return subtle.ConstantTimeCompare([]byte(stored), []byte(token)) == 1, nil
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	default:
		return false, apperrors.Storage(err)
	}
}

const deleteSessionByToken = `-- name: DeleteSessionByToken
DELETE FROM sessions
WHERE token = $1
`

func (r *SessionRepo) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.DB.Exec(ctx, deleteSessionByToken, token)
	if err != nil {
		return apperrors.Storage(err)
	}
	return nil
}
