package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

const userColumns = `id, created_at, username, name, email, password_hash`

const createUser = `-- name: CreateUser
INSERT INTO users (id, username, name, email, password_hash)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + userColumns

func (r *UserRepo) CreateUser(ctx context.Context, params repository.CreateUserParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser, uuid.New(), params.Username, params.Name, params.Email, params.HashedPassword)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			switch pgErr.ConstraintName {
			case "users_email_key":
				return user, apperrors.ErrEmailTaken
			case "users_username_key":
				return user, apperrors.ErrUsernameTaken
			default:
				return user, apperrors.ErrUserExists
			}
		}

		return user, apperrors.Storage(err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userColumns + ` FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, id)
	return collectUser(rows)
}

const getUserByUsername = `-- name: GetUserByUsername
SELECT ` + userColumns + ` FROM users
WHERE username = $1
`

func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByUsername, username)
	return collectUser(rows)
}

// Column name can't be a query parameter, so only the known ones are allowed
var existsQueries = map[string]string{
	repository.FieldUsername: `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`,
	repository.FieldEmail:    `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`,
}

func (r *UserRepo) Exists(ctx context.Context, field string, value string) (bool, error) {
	query, ok := existsQueries[field]
	if !ok {
		return false, fmt.Errorf("field %q can't be checked for existence", field)
	}

	var exists bool
	if err := r.DB.QueryRow(ctx, query, value).Scan(&exists); err != nil {
		return false, apperrors.Storage(err)
	}

	return exists, nil
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, apperrors.Storage(err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Username, &u.Name, &u.Email, &u.HashedPassword)
	return u, err
}
