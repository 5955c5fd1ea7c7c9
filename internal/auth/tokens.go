// Package auth issues and verifies the signed access and refresh tokens.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"xhubsell/internal/config"
	"xhubsell/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	Issuer   = "xhubsell-api"
	Audience = "xhubsell-client"
)

// TokenType distinguishes access from refresh tokens inside the claims.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload shared by both token types.
type Claims struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	Type  TokenType   `json:"typ"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return uint(id), nil
}

// TokenPair is the result of a successful authentication.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Signer signs and verifies HS256 tokens with one secret per token type.
type Signer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// Option customizes a Signer.
type Option func(*Signer)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) { s.now = now }
}

// NewSigner builds a Signer. The two secrets must differ.
func NewSigner(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, opts ...Option) (*Signer, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	s := &Signer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewSignerFromConfig builds a Signer from the JWT_* settings.
func NewSignerFromConfig(cfg *config.Config, opts ...Option) (*Signer, error) {
	return NewSigner(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL(), opts...)
}

// AccessTTL returns the configured access token lifetime.
func (s *Signer) AccessTTL() time.Duration {
	return s.accessTTL
}

// IssuePair signs a fresh access and refresh token for u.
func (s *Signer) IssuePair(u *models.User) (TokenPair, error) {
	access, err := s.issue(u, TokenAccess)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.issue(u, TokenRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Signer) issue(u *models.User, typ TokenType) (string, error) {
	secret, ttl := s.accessSecret, s.accessTTL
	if typ == TokenRefresh {
		secret, ttl = s.refreshSecret, s.refreshTTL
	}

	now := s.now()
	claims := Claims{
		Email: u.Email,
		Role:  u.Role,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

// VerifyAccess validates an access token.
func (s *Signer) VerifyAccess(token string) (*Claims, error) {
	return s.verify(token, TokenAccess, s.accessSecret)
}

// VerifyRefresh validates a refresh token.
func (s *Signer) VerifyRefresh(token string) (*Claims, error) {
	return s.verify(token, TokenRefresh, s.refreshSecret)
}

func (s *Signer) verify(token string, want TokenType, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Type != want {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, want)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}
