package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/repository"
	"github.com/nkiryanov/blogapi/internal/testutil"
)

func newUserParams(username string, email string) repository.CreateUserParams {
	return repository.CreateUserParams{
		Username:       username,
		Name:           "Test User",
		Email:          email,
		HashedPassword: "hashedpassword123",
	}
}

func Test_UserRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create user ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			user, err := r.CreateUser(t.Context(), newUserParams("testuser", "test@example.com"))

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, user.ID, "ID should be generated")
			assert.Equal(t, "testuser", user.Username)
			assert.Equal(t, "Test User", user.Name)
			assert.Equal(t, "test@example.com", user.Email)
			assert.Equal(t, "hashedpassword123", user.HashedPassword)
			assert.WithinDuration(t, time.Now(), user.CreatedAt, time.Second, "CreatedAt should be recent")
		})
	})

	t.Run("create duplicate username fail", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			_, err := r.CreateUser(t.Context(), newUserParams("testuser", "first@example.com"))
			require.NoError(t, err)

			_, err = r.CreateUser(t.Context(), newUserParams("testuser", "second@example.com"))

			require.ErrorIs(t, err, apperrors.ErrUsernameTaken)
			require.ErrorIs(t, err, apperrors.ErrConflict)
		})
	})

	t.Run("create duplicate email fail", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			_, err := r.CreateUser(t.Context(), newUserParams("firstuser", "test@example.com"))
			require.NoError(t, err)

			_, err = r.CreateUser(t.Context(), newUserParams("seconduser", "test@example.com"))

			require.ErrorIs(t, err, apperrors.ErrEmailTaken)
		})
	})

	t.Run("get user by id ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), newUserParams("findbyid", "id@example.com"))
			require.NoError(t, err)

			got, err := r.GetUserByID(t.Context(), created.ID)

			require.NoError(t, err)
			assert.Equal(t, created, got)
		})
	})

	t.Run("get user by id not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByID(t.Context(), uuid.New())

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound, "should return well known error")
		})
	})

	t.Run("get user by username ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), newUserParams("findbyusername", "name@example.com"))
			require.NoError(t, err)

			got, err := r.GetUserByUsername(t.Context(), created.Username)

			require.NoError(t, err)
			assert.Equal(t, created, got)
		})
	})

	t.Run("get user by username not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByUsername(t.Context(), "nonexistentuser")

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("exists", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			_, err := r.CreateUser(t.Context(), newUserParams("existing", "existing@example.com"))
			require.NoError(t, err)

			tests := []struct {
				field    string
				value    string
				expected bool
			}{
				{repository.FieldUsername, "existing", true},
				{repository.FieldUsername, "missing", false},
				{repository.FieldEmail, "existing@example.com", true},
				{repository.FieldEmail, "missing@example.com", false},
			}

			for _, tt := range tests {
				got, err := r.Exists(t.Context(), tt.field, tt.value)

				require.NoError(t, err)
				require.Equalf(t, tt.expected, got, "exists(%s, %s)", tt.field, tt.value)
			}
		})
	})

	t.Run("exists unknown field fail", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.Exists(t.Context(), "password_hash", "anything")

			require.Error(t, err, "only known fields may be checked")
		})
	})
}
