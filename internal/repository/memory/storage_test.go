package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/repository"
)

func TestMemory_UserRepo(t *testing.T) {
	params := repository.CreateUserParams{
		Username:       "testuser",
		Name:           "Test User",
		Email:          "test@example.com",
		HashedPassword: "hashed",
	}

	t.Run("create and get", func(t *testing.T) {
		r := NewStorage().User()

		created, err := r.CreateUser(t.Context(), params)
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, created.ID)

		byID, err := r.GetUserByID(t.Context(), created.ID)
		require.NoError(t, err)
		require.Equal(t, created, byID)

		byName, err := r.GetUserByUsername(t.Context(), "testuser")
		require.NoError(t, err)
		require.Equal(t, created, byName)
	})

	t.Run("duplicates fail", func(t *testing.T) {
		r := NewStorage().User()
		_, err := r.CreateUser(t.Context(), params)
		require.NoError(t, err)

		sameEmail := params
		sameEmail.Username = "otheruser"
		_, err = r.CreateUser(t.Context(), sameEmail)
		require.ErrorIs(t, err, apperrors.ErrEmailTaken)

		sameUsername := params
		sameUsername.Email = "other@example.com"
		_, err = r.CreateUser(t.Context(), sameUsername)
		require.ErrorIs(t, err, apperrors.ErrUsernameTaken)
	})

	t.Run("not found", func(t *testing.T) {
		r := NewStorage().User()

		_, err := r.GetUserByID(t.Context(), uuid.New())
		require.ErrorIs(t, err, apperrors.ErrUserNotFound)

		_, err = r.GetUserByUsername(t.Context(), "missing")
		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("exists", func(t *testing.T) {
		r := NewStorage().User()
		_, err := r.CreateUser(t.Context(), params)
		require.NoError(t, err)

		ok, err := r.Exists(t.Context(), repository.FieldEmail, "test@example.com")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = r.Exists(t.Context(), repository.FieldUsername, "missing")
		require.NoError(t, err)
		require.False(t, ok)

		_, err = r.Exists(t.Context(), "name", "Test User")
		require.Error(t, err)
	})

	t.Run("cancelled context fail", func(t *testing.T) {
		r := NewStorage().User()
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err := r.CreateUser(ctx, params)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestMemory_SessionRepo(t *testing.T) {
	userID := uuid.New()

	t.Run("upsert replaces", func(t *testing.T) {
		r := NewStorage().Session()

		require.NoError(t, r.Upsert(t.Context(), userID, "token-1"))
		require.NoError(t, r.Upsert(t.Context(), userID, "token-2"))

		ok, err := r.Exists(t.Context(), userID, "token-1")
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = r.Exists(t.Context(), userID, "token-2")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("delete by token", func(t *testing.T) {
		r := NewStorage().Session()
		require.NoError(t, r.Upsert(t.Context(), userID, "token-1"))

		require.NoError(t, r.DeleteByToken(t.Context(), "not-existed"), "absent token is not an error")
		require.NoError(t, r.DeleteByToken(t.Context(), "token-1"))

		ok, err := r.Exists(t.Context(), userID, "token-1")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("concurrent upserts keep one session", func(t *testing.T) {
		r := NewStorage().Session()

		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = r.Upsert(context.Background(), userID, uuid.NewString())
				_, _ = r.Exists(context.Background(), userID, "token")
			}()
		}
		wg.Wait()

		require.Len(t, r.(*SessionRepo).sessions, 1)
	})
}
