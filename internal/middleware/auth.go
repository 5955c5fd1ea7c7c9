// Package middleware provides Fiber middleware for authentication, authorization,
// logging, metrics, tracing and rate limiting.
package middleware

import (
	"context"
	"strings"
	"time"

	"xhubsell/internal/auth"
	"xhubsell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Locals keys set by the auth middleware.
const (
	LocalUserID      = "userID"
	LocalRole        = "role"
	LocalEmail       = "email"
	LocalTokenID     = "jti"
	LocalTokenExpiry = "tokenExpiry"
)

// BlacklistKey is the Redis key marking a revoked token id.
func BlacklistKey(jti string) string {
	return "blacklist:" + jti
}

// AccessVerifier validates access tokens.
type AccessVerifier interface {
	VerifyAccess(token string) (*auth.Claims, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthRequired rejects requests without a valid, unrevoked access token and
// stores the caller's identity in locals and the user context.
func AuthRequired(v AccessVerifier, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c)
		if token == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := v.VerifyAccess(token)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		if isRevoked(c.UserContext(), rdb, claims.ID) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token has been revoked"))
		}

		setIdentity(c, claims)
		return c.Next()
	}
}

// OptionalAuth attaches the caller's identity when a valid token is present
// and lets anonymous requests through unchanged.
func OptionalAuth(v AccessVerifier, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c)
		if token == "" {
			return c.Next()
		}
		claims, err := v.VerifyAccess(token)
		if err != nil || isRevoked(c.UserContext(), rdb, claims.ID) {
			return c.Next()
		}
		setIdentity(c, claims)
		return c.Next()
	}
}

// CurrentUserID returns the authenticated user id, if any.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalUserID).(uint)
	return id, ok
}

// CurrentRole returns the authenticated user's role, if any.
func CurrentRole(c *fiber.Ctx) (models.Role, bool) {
	role, ok := c.Locals(LocalRole).(models.Role)
	return role, ok
}

func isRevoked(ctx context.Context, rdb *redis.Client, jti string) bool {
	if rdb == nil || jti == "" {
		return false
	}
	n, err := rdb.Exists(ctx, BlacklistKey(jti)).Result()
	if err != nil {
		Logger.WarnContext(ctx, "token blacklist lookup failed", "error", err)
		return false
	}
	return n > 0
}

func setIdentity(c *fiber.Ctx, claims *auth.Claims) {
	userID, _ := claims.UserID()
	c.Locals(LocalUserID, userID)
	c.Locals(LocalRole, claims.Role)
	c.Locals(LocalEmail, claims.Email)
	c.Locals(LocalTokenID, claims.ID)
	if claims.ExpiresAt != nil {
		c.Locals(LocalTokenExpiry, claims.ExpiresAt.Time)
	} else {
		c.Locals(LocalTokenExpiry, time.Time{})
	}

	ctx := context.WithValue(c.UserContext(), UserIDKey, userID)
	c.SetUserContext(ctx)
}
