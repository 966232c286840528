package handlers

import (
	"context"
	"net/http"

	"github.com/nkiryanov/blogapi/internal/handlers/middleware"
	"github.com/nkiryanov/blogapi/internal/logger"
	"github.com/nkiryanov/blogapi/internal/metrics"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/service/auth"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	m *metrics.Metrics,
	logger logger.Logger,
) http.Handler {
	withAuth := middleware.NewAuth(authService).Auth

	apiuser := http.NewServeMux()

	apiuser.Handle("POST /register", handleRegister(authService, logger))
	apiuser.Handle("POST /login", handleLogin(authService, logger))
	apiuser.Handle("POST /refresh", handleTokenRefresh(authService, logger))
	apiuser.Handle("POST /logout", handleLogout(authService, logger))

	apiuser.Handle("GET /me", withAuth(handleUserMe()))

	root := http.NewServeMux()
	root.Handle("/api/user/", http.StripPrefix("/api/user", apiuser))
	root.Handle("GET /metrics", m.Handler())

	handler := chain(root,
		middleware.RequestID,
		middleware.LoggerMiddleware(logger),
		middleware.MetricsMiddleware(m),
	)

	return handler
}

type authService interface {
	// Register user and start its session
	// Has to return apperrors.ValidationError on malformed params and apperrors.ErrConflict if user exists
	Register(ctx context.Context, params auth.RegisterParams) (models.Session, error)

	// Login user with username and password
	// Has to return apperrors.ErrInvalidCredentials if user not found or password is wrong
	Login(ctx context.Context, params auth.LoginParams) (models.Session, error)

	// Rotate session tokens using refresh token
	// Has to return error wrapping apperrors.ErrUnauthorized if the token is not the user's current one
	Refresh(ctx context.Context, refresh string) (models.Session, error)

	// Revoke session of the refresh token
	Logout(ctx context.Context, refresh string) error

	// Get request and return user if it authenticated or error
	Authenticate(ctx context.Context, r *http.Request) (models.User, error)

	// Set auth tokens (access, refresh) to response or remove them
	SetTokens(w http.ResponseWriter, pair models.TokenPair)
	ClearTokens(w http.ResponseWriter)

	// Get refresh token from request
	GetRefreshString(r *http.Request) (string, error)
}
