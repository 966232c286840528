package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/logger"
	"github.com/nkiryanov/blogapi/internal/metrics"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/repository"
	"github.com/nkiryanov/blogapi/internal/service/user"
	"github.com/nkiryanov/blogapi/internal/validate"
)

const (
	defaultAccessCookieName  = "accessToken"
	defaultRefreshCookieName = "refreshToken"
	defaultCookieMaxAge      = 24 * time.Hour
)

type Config struct {
	// Cookie names to keep tokens
	// If not set than default is used
	AccessCookieName  string
	RefreshCookieName string

	// Cookies lifetime. It does not depend on tokens lifetime
	CookieMaxAge time.Duration

	// Send cookies over https only
	CookieSecure bool

	// Hasher to use during user registration or login process
	// BcryptHasher if not set
	Hasher user.PasswordHasher

	// Optional: noop logger and no metrics if not set
	Logger  logger.Logger
	Metrics *metrics.Metrics
}

type tokenManager interface {
	GeneratePair(userID uuid.UUID) (models.TokenPair, error)
	VerifyAccess(token string) (uuid.UUID, error)
	VerifyRefresh(token string) (uuid.UUID, error)
}

type RegisterParams struct {
	Username        string `json:"username" validate:"required,min=5,max=30,nocontrol"`
	Name            string `json:"name" validate:"required,max=30,nocontrol"`
	Email           string `json:"email" validate:"required,max=254,email"`
	Password        string `json:"password" validate:"required,password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type LoginParams struct {
	Username string `json:"username" validate:"required,min=5,max=30,nocontrol"`
	Password string `json:"password" validate:"required,password"`
}

// Auth service: issues, rotates and revokes user sessions
type AuthService struct {
	tokens  tokenManager
	users   *user.UserService
	storage repository.Storage

	logger  logger.Logger
	metrics *metrics.Metrics

	accessCookieName  string
	refreshCookieName string
	cookieMaxAge      time.Duration
	cookieSecure      bool
}

func NewService(cfg Config, tokens tokenManager, storage repository.Storage) (*AuthService, error) {
	if tokens == nil || storage == nil {
		return nil, errors.New("token manager and storage must not be nil")
	}

	setDefault := func(field *string, def string) {
		if *field == "" {
			*field = def
		}
	}
	setDefault(&cfg.AccessCookieName, defaultAccessCookieName)
	setDefault(&cfg.RefreshCookieName, defaultRefreshCookieName)

	if cfg.CookieMaxAge == 0 {
		cfg.CookieMaxAge = defaultCookieMaxAge
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}

	return &AuthService{
		tokens:            tokens,
		users:             user.NewService(cfg.Hasher, storage),
		storage:           storage,
		logger:            cfg.Logger.With("component", "auth"),
		metrics:           cfg.Metrics,
		accessCookieName:  cfg.AccessCookieName,
		refreshCookieName: cfg.RefreshCookieName,
		cookieMaxAge:      cfg.CookieMaxAge,
		cookieSecure:      cfg.CookieSecure,
	}, nil
}

// Register user and start its session
// User creation and session saving are done in one transaction
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (models.Session, error) {
	var session models.Session

	params.Username = strings.TrimSpace(params.Username)
	params.Name = strings.TrimSpace(params.Name)
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))

	if err := validate.Struct(params); err != nil {
		return session, err
	}

	err := s.storage.InTx(ctx, func(tx repository.Storage) error {
		u, err := s.users.WithStorage(tx).CreateUser(ctx, user.CreateParams{
			Username: params.Username,
			Name:     params.Name,
			Email:    params.Email,
			Password: params.Password,
		})
		if err != nil {
			return err
		}

		session, err = s.startSession(ctx, tx, u)
		return err
	})
	if err != nil {
		return models.Session{}, err
	}

	s.metrics.SessionIssued(metrics.OpRegister)
	s.logger.Info("user registered", "user_id", session.User.ID)

	return session, nil
}

// Login user and start new session
// Previous session of the user is replaced
func (s *AuthService) Login(ctx context.Context, params LoginParams) (models.Session, error) {
	params.Username = strings.TrimSpace(params.Username)

	if err := validate.Struct(params); err != nil {
		return models.Session{}, err
	}

	u, err := s.users.Authenticate(ctx, params.Username, params.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			s.logger.Warn("login failed", "username", params.Username)
		}
		return models.Session{}, err
	}

	session, err := s.startSession(ctx, s.storage, u)
	if err != nil {
		return session, err
	}

	s.metrics.SessionIssued(metrics.OpLogin)

	return session, nil
}

// Rotate session: check refresh token is the user's current one and issue new pair
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.Session, error) {
	userID, err := s.tokens.VerifyRefresh(refresh)
	if err != nil {
		s.rejectRefresh(err)
		return models.Session{}, err
	}

	current, err := s.storage.Session().Exists(ctx, userID, refresh)
	if err != nil {
		return models.Session{}, err
	}
	if !current {
		s.rejectRefresh(apperrors.ErrRefreshTokenMismatch)
		s.logger.Warn("refresh token is not the current one", "user_id", userID)
		return models.Session{}, apperrors.ErrRefreshTokenMismatch
	}

	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.rejectRefresh(apperrors.ErrTokenInvalid)
			return models.Session{}, fmt.Errorf("token owner not found: %w", apperrors.ErrTokenInvalid)
		}
		return models.Session{}, err
	}

	session, err := s.startSession(ctx, s.storage, u)
	if err != nil {
		return session, err
	}

	s.metrics.SessionIssued(metrics.OpRefresh)

	return session, nil
}

// Revoke session with the refresh token
// It is not an error if there is no such session
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	if refresh != "" {
		if err := s.storage.Session().DeleteByToken(ctx, refresh); err != nil {
			return err
		}
	}

	s.metrics.LoggedOut()
	return nil
}

// Authenticate request: both session cookies are required, access token must be valid
// and its user still exist. Refresh token is not checked against the storage
func (s *AuthService) Authenticate(ctx context.Context, r *http.Request) (models.User, error) {
	access, err := r.Cookie(s.accessCookieName)
	if err != nil || access.Value == "" {
		return models.User{}, apperrors.ErrNoSession
	}
	if _, err := s.GetRefreshString(r); err != nil {
		return models.User{}, err
	}

	userID, err := s.tokens.VerifyAccess(access.Value)
	if err != nil {
		return models.User{}, err
	}

	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return models.User{}, fmt.Errorf("token owner not found: %w", apperrors.ErrTokenInvalid)
		}
		return models.User{}, err
	}

	return u, nil
}

// Set session cookies (access and refresh) to response
func (s *AuthService) SetTokens(w http.ResponseWriter, pair models.TokenPair) {
	maxAge := int(s.cookieMaxAge.Seconds())
	http.SetCookie(w, s.cookie(s.accessCookieName, pair.Access.Value, maxAge))
	http.SetCookie(w, s.cookie(s.refreshCookieName, pair.Refresh.Value, maxAge))
}

// Ask client to remove session cookies
func (s *AuthService) ClearTokens(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie(s.accessCookieName, "", -1))
	http.SetCookie(w, s.cookie(s.refreshCookieName, "", -1))
}

// Get refresh token from request cookies
func (s *AuthService) GetRefreshString(r *http.Request) (string, error) {
	c, err := r.Cookie(s.refreshCookieName)
	if err != nil || c.Value == "" {
		return "", apperrors.ErrNoSession
	}
	return c.Value, nil
}

// Issue token pair and save refresh token as the user's current one
func (s *AuthService) startSession(ctx context.Context, storage repository.Storage, u models.User) (models.Session, error) {
	pair, err := s.tokens.GeneratePair(u.ID)
	if err != nil {
		return models.Session{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	if err := storage.Session().Upsert(ctx, u.ID, pair.Refresh.Value); err != nil {
		return models.Session{}, err
	}

	return models.Session{User: u, Tokens: pair}, nil
}

func (s *AuthService) rejectRefresh(err error) {
	reason := "invalid"
	switch {
	case errors.Is(err, apperrors.ErrTokenExpired):
		reason = "expired"
	case errors.Is(err, apperrors.ErrRefreshTokenMismatch):
		reason = "mismatch"
	}
	s.metrics.RefreshRejected(reason)
}

func (s *AuthService) cookie(name string, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
}
