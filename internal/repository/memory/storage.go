// Package memory keeps users and sessions in process memory.
// It is used by tests and local runs without database; transactions are not isolated.
package memory

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/repository"
)

type Storage struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]models.User
	sessions map[uuid.UUID]models.RefreshSession
}

func NewStorage() *Storage {
	return &Storage{
		users:    make(map[uuid.UUID]models.User),
		sessions: make(map[uuid.UUID]models.RefreshSession),
	}
}

func (s *Storage) User() repository.UserRepo {
	return (*UserRepo)(s)
}

func (s *Storage) Session() repository.SessionRepo {
	return (*SessionRepo)(s)
}

// Run fn against the same storage: changes made before fn failed are kept
func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s)
}

type UserRepo Storage

func (r *UserRepo) CreateUser(ctx context.Context, params repository.CreateUserParams) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		switch {
		case u.Email == params.Email:
			return models.User{}, apperrors.ErrEmailTaken
		case u.Username == params.Username:
			return models.User{}, apperrors.ErrUsernameTaken
		}
	}

	user := models.User{
		ID:             uuid.New(),
		CreatedAt:      time.Now(),
		Username:       params.Username,
		Name:           params.Name,
		Email:          params.Email,
		HashedPassword: params.HashedPassword,
	}
	r.users[user.ID] = user

	return user, nil
}

func (r *UserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, apperrors.ErrUserNotFound
}

func (r *UserRepo) Exists(ctx context.Context, field string, value string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var get func(models.User) string
	switch field {
	case repository.FieldUsername:
		get = func(u models.User) string { return u.Username }
	case repository.FieldEmail:
		get = func(u models.User) string { return u.Email }
	default:
		return false, fmt.Errorf("field %q can't be checked for existence", field)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if get(u) == value {
			return true, nil
		}
	}
	return false, nil
}

type SessionRepo Storage

func (r *SessionRepo) Upsert(ctx context.Context, userID uuid.UUID, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[userID] = models.RefreshSession{UserID: userID, Token: token, UpdatedAt: time.Now()}
	return nil
}

func (r *SessionRepo) Exists(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[userID]
	if !ok {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(session.Token), []byte(token)) == 1, nil
}

func (r *SessionRepo) DeleteByToken(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, session := range r.sessions {
		if session.Token == token {
			delete(r.sessions, userID)
		}
	}
	return nil
}
