package middleware

import (
	"context"
	"net/http"

	"github.com/nkiryanov/blogapi/internal/handlers/render"
	"github.com/nkiryanov/blogapi/internal/handlers/userctx"
	"github.com/nkiryanov/blogapi/internal/models"
)

type authService interface {
	// Return user of the request session or error if the request is not authenticated
	Authenticate(ctx context.Context, r *http.Request) (models.User, error)
}

type Auth struct {
	auth authService
}

func NewAuth(as authService) *Auth {
	return &Auth{auth: as}
}

// Let request pass only if it is authenticated, the user projection is put to request context
func (m *Auth) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.auth.Authenticate(r.Context(), r)
		if err != nil {
			render.Error(w, err)
			return
		}

		ctx := userctx.New(r.Context(), user.Public())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
