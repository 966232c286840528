package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
)

const (
	defaultAccessTokenTTL  = 30 * time.Minute
	defaultSigningMethod   = "HS256"
	defaultRefreshTokenTTL = 60 * time.Minute
)

// Token manager with sensible default
type Config struct {
	// Secret keys to sign access and refresh tokens
	// Both required and must differ
	AccessSecret  string
	RefreshSecret string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type TokenManager struct {
	access  signer
	refresh signer

	// JWT MAC (Message Authentication Code) algorithm
	alg jwt.SigningMethod
}

// Key and lifetime of one token class
type signer struct {
	key []byte
	ttl time.Duration
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("access and refresh secrets must not be empty")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg, ok := jwt.GetSigningMethod(cfg.Alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("signing method %q is not supported, use one of HS256, HS384, HS512", cfg.Alg)
	}

	if cfg.AccessTTL < 0 || cfg.RefreshTTL < 0 {
		return nil, errors.New("token lifetimes must not be negative")
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &TokenManager{
		access:  signer{key: []byte(cfg.AccessSecret), ttl: cfg.AccessTTL},
		refresh: signer{key: []byte(cfg.RefreshSecret), ttl: cfg.RefreshTTL},
		alg:     alg,
	}, nil
}

func (m *TokenManager) SignAccess(userID uuid.UUID) (models.IssuedToken, error) {
	return m.sign(m.access, userID)
}

func (m *TokenManager) SignRefresh(userID uuid.UUID) (models.IssuedToken, error) {
	return m.sign(m.refresh, userID)
}

// Sign access and refresh tokens for the user
func (m *TokenManager) GeneratePair(userID uuid.UUID) (models.TokenPair, error) {
	var pair models.TokenPair

	access, err := m.SignAccess(userID)
	if err != nil {
		return pair, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	refresh, err := m.SignRefresh(userID)
	if err != nil {
		return pair, fmt.Errorf("error while signing refresh token. Err: %w", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Parse and validate access token, return token subject
func (m *TokenManager) VerifyAccess(token string) (uuid.UUID, error) {
	return m.verify(m.access, token)
}

// Parse and validate refresh token, return token subject
// It is not checked whether the token is the user's current one
func (m *TokenManager) VerifyRefresh(token string) (uuid.UUID, error) {
	return m.verify(m.refresh, token)
}

func (m *TokenManager) sign(s signer, userID uuid.UUID) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(s.ttl)

	token := jwt.NewWithClaims(
		m.alg,
		jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	)

	value, err := token.SignedString(s.key)
	if err != nil {
		return models.IssuedToken{}, err
	}

	return models.IssuedToken{Value: value, ExpiresAt: expiresAt}, nil
}

func (m *TokenManager) verify(s signer, value string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(
		value,
		claims,
		func(t *jwt.Token) (any, error) {
			return s.key, nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return uuid.Nil, fmt.Errorf("error while validating token. Err: %w", apperrors.ErrTokenExpired)
	case err != nil:
		return uuid.Nil, fmt.Errorf("error while parsing or validating token. Err: %w", errors.Join(apperrors.ErrTokenInvalid, err))
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("token subject is not user id. Err: %w", apperrors.ErrTokenInvalid)
	}

	return userID, nil
}
