package user

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/repository"
)

// Compared against when user not found, so unknown username costs as much as wrong password
const dummyPassword = "DummyPassword1"

type CreateParams struct {
	Username string
	Name     string
	Email    string
	Password string
}

type UserService struct {
	hasher  PasswordHasher
	storage repository.Storage

	dummyHash func() (string, error)
}

func NewService(hasher PasswordHasher, storage repository.Storage) *UserService {
	if hasher == nil {
		hasher = DefaultHasher
	}

	return &UserService{
		hasher:  hasher,
		storage: storage,
		dummyHash: sync.OnceValues(func() (string, error) {
			return hasher.Hash(dummyPassword)
		}),
	}
}

// Return service copy that works with another storage, e.g. the one bound to transaction
func (s *UserService) WithStorage(storage repository.Storage) *UserService {
	c := *s
	c.storage = storage
	return &c
}

// Create user with hashed password
// Email and username availability are both checked and both reported
func (s *UserService) CreateUser(ctx context.Context, params CreateParams) (models.User, error) {
	var user models.User

	if err := s.checkAvailable(ctx, params.Username, params.Email); err != nil {
		return user, err
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	user, err = s.storage.User().CreateUser(ctx, repository.CreateUserParams{
		Username:       params.Username,
		Name:           params.Name,
		Email:          params.Email,
		HashedPassword: hash,
	})
	if err != nil {
		return user, fmt.Errorf("can't create user. Err: %w", err)
	}

	return user, nil
}

// Find user by username and check the password
// Return apperrors.ErrInvalidCredentials either user not exists or password is wrong
func (s *UserService) Authenticate(ctx context.Context, username string, password string) (models.User, error) {
	user, err := s.storage.User().GetUserByUsername(ctx, username)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		if hash, hashErr := s.dummyHash(); hashErr == nil {
			_ = s.hasher.Compare(hash, password)
		}
		return models.User{}, apperrors.ErrInvalidCredentials
	case err != nil:
		return models.User{}, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.User{}, apperrors.ErrInvalidCredentials
	}

	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.storage.User().GetUserByID(ctx, userID)
}

func (s *UserService) checkAvailable(ctx context.Context, username string, email string) error {
	checks := []struct {
		field string
		value string
		taken error
	}{
		{repository.FieldEmail, email, apperrors.ErrEmailTaken},
		{repository.FieldUsername, username, apperrors.ErrUsernameTaken},
	}

	var errs []error
	for _, check := range checks {
		exists, err := s.storage.User().Exists(ctx, check.field, check.value)
		if err != nil {
			return err
		}
		if exists {
			errs = append(errs, check.taken)
		}
	}

	return errors.Join(errs...)
}
