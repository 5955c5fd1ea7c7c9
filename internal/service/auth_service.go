// Package service holds the business logic between HTTP handlers and repositories.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"xhubsell/internal/auth"
	"xhubsell/internal/middleware"
	"xhubsell/internal/models"
	"xhubsell/internal/observability"
	"xhubsell/internal/repository"
	"xhubsell/internal/validation"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is the bcrypt cost for stored passwords.
const PasswordHashCost = 10

// TokenIssuer signs and verifies token pairs.
type TokenIssuer interface {
	IssuePair(u *models.User) (auth.TokenPair, error)
	VerifyRefresh(token string) (*auth.Claims, error)
}

// RegisterInput is the registration request body. Seller fields are used
// only when Role is SELLER.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,min=3,max=30"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Role      string `json:"role" validate:"omitempty,oneof=SELLER RECRUITER CLIENT seller recruiter client"`
	Language  string `json:"language" validate:"omitempty,oneof=EN RU en ru"`

	Title       string   `json:"title" validate:"max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Bio         string   `json:"bio" validate:"max=5000"`
	HourlyRate  *float64 `json:"hourlyRate" validate:"omitempty,gte=0,lte=100000"`
	Experience  *int     `json:"experience" validate:"omitempty,gte=0,lte=80"`
	Location    string   `json:"location" validate:"max=200"`
	Languages   []string `json:"languages" validate:"max=20"`
	Skills      []string `json:"skills" validate:"max=50"`
}

// AuthResult is returned by register, login and refresh.
type AuthResult struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// AuthService implements registration and the token session lifecycle.
type AuthService struct {
	users  repository.UserRepository
	tokens TokenIssuer
	redis  *redis.Client
	now    func() time.Time
}

// NewAuthService wires the auth service. rdb may be nil, in which case
// logout and refresh rotation cannot revoke tokens.
func NewAuthService(users repository.UserRepository, tokens TokenIssuer, rdb *redis.Client) *AuthService {
	return &AuthService{users: users, tokens: tokens, redis: rdb, now: time.Now}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (result *AuthResult, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "AuthService", "Register")
	defer func() {
		observability.AuthEvents.WithLabelValues("register", observability.Outcome(err)).Inc()
		observability.EndSpan(span, err)
	}()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)

	if err := validation.ValidateStruct(in); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, err
	}

	role := models.RoleClient
	if in.Role != "" {
		role, _ = models.ParseRole(in.Role)
	}
	lang := models.LanguageEN
	if in.Language != "" {
		lang, _ = models.ParseLanguage(in.Language)
	}

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Email already registered")
	}
	existing, err = s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), PasswordHashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:     in.Email,
		Username:  in.Username,
		Password:  string(hashed),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Role:      role,
		Language:  lang,
	}

	var profile *models.SellerProfile
	if role == models.RoleSeller {
		profile = newSellerProfile(user, in)
	}

	if err := s.users.Create(ctx, user, profile); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("user.id", int64(user.ID)), attribute.String("user.role", string(role)))
	slog.InfoContext(ctx, "user registered", slog.Uint64("user_id", uint64(user.ID)), slog.String("role", string(role)))

	return s.issue(user)
}

// newSellerProfile builds the initial profile of a registering seller.
// It always starts in PENDING_VERIFICATION.
func newSellerProfile(u *models.User, in RegisterInput) *models.SellerProfile {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = models.DefaultSellerTitle(u)
	}
	langs := make([]string, 0, len(in.Languages))
	for _, l := range in.Languages {
		if l = strings.ToUpper(strings.TrimSpace(l)); l != "" {
			langs = append(langs, l)
		}
	}
	skills := make([]string, 0, len(in.Skills))
	for _, sk := range in.Skills {
		if sk = strings.TrimSpace(sk); sk != "" {
			skills = append(skills, sk)
		}
	}
	return &models.SellerProfile{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Bio:         strings.TrimSpace(in.Bio),
		HourlyRate:  in.HourlyRate,
		Experience:  in.Experience,
		Location:    strings.TrimSpace(in.Location),
		Languages:   langs,
		Skills:      skills,
		Status:      models.SellerStatusPendingVerification,
	}
}

// Login checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (result *AuthResult, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "AuthService", "Login")
	defer func() {
		observability.AuthEvents.WithLabelValues("login", observability.Outcome(err)).Inc()
		observability.EndSpan(span, err)
	}()

	if strings.TrimSpace(email) == "" || password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errInvalidCredentials()
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); cmpErr != nil {
		return nil, errInvalidCredentials()
	}
	return s.issue(user)
}

func errInvalidCredentials() *models.AppError {
	return models.NewUnauthorizedError("Invalid credentials")
}

func errInvalidRefresh() *models.AppError {
	return models.NewUnauthorizedError("Invalid refresh token")
}

// Refresh exchanges a valid refresh token for a new pair. The presented
// refresh token is revoked so it cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (result *AuthResult, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "AuthService", "Refresh")
	defer func() {
		observability.AuthEvents.WithLabelValues("refresh", observability.Outcome(err)).Inc()
		observability.EndSpan(span, err)
	}()

	if strings.TrimSpace(refreshToken) == "" {
		return nil, errInvalidRefresh()
	}
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, errInvalidRefresh()
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, errInvalidRefresh()
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	claimed, err := s.spend(ctx, claims.ID, expiresAt)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, errInvalidRefresh()
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, errInvalidRefresh()
		}
		s.unspend(ctx, claims.ID)
		return nil, err
	}
	return s.issue(user)
}

// Logout revokes the access token identified by jti until it expires.
func (s *AuthService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return models.NewUnauthorizedError("Invalid or expired token")
	}
	if s.redis == nil {
		slog.WarnContext(ctx, "logout without redis: token stays valid until expiry")
		return nil
	}
	s.revoke(ctx, jti, expiresAt)
	observability.AuthEvents.WithLabelValues("logout", "ok").Inc()
	return nil
}

// Me returns the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{User: user, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *AuthService) revoke(ctx context.Context, jti string, expiresAt time.Time) {
	if s.redis == nil || jti == "" {
		return
	}
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return
	}
	if err := s.redis.Set(ctx, middleware.BlacklistKey(jti), "1", ttl).Err(); err != nil {
		slog.WarnContext(ctx, "failed to revoke token", slog.String("error", err.Error()))
	}
}

// spend marks a refresh jti as used. Only the first caller for a given jti
// gets true; the SETNX makes concurrent refreshes with one token race-free.
func (s *AuthService) spend(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	if s.redis == nil || jti == "" {
		return true, nil
	}
	ttl := expiresAt.Sub(s.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	ok, err := s.redis.SetNX(ctx, middleware.BlacklistKey(jti), "1", ttl).Result()
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return ok, nil
}

// unspend releases a jti claimed by spend when the refresh failed for a
// reason unrelated to the token.
func (s *AuthService) unspend(ctx context.Context, jti string) {
	if s.redis == nil || jti == "" {
		return
	}
	if err := s.redis.Del(ctx, middleware.BlacklistKey(jti)).Err(); err != nil {
		slog.WarnContext(ctx, "failed to release refresh token", slog.String("error", err.Error()))
	}
}
