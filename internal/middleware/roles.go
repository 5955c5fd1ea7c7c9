package middleware

import (
	"log/slog"

	"xhubsell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Authorize reports whether role may access a route guarded by required.
// An empty required list admits any authenticated role.
func Authorize(role models.Role, required ...models.Role) bool {
	if role == "" {
		return false
	}
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if role == r {
			return true
		}
	}
	return false
}

// RequireRoles answers 403 unless the authenticated role is in required.
// It must run after AuthRequired.
func RequireRoles(required ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := CurrentRole(c)
		if !Authorize(role, required...) {
			Logger.WarnContext(c.UserContext(), "role not authorized",
				slog.String("role", string(role)),
				slog.Any("required", required),
				slog.String("path", c.Path()),
			)
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Insufficient permissions"))
		}
		return c.Next()
	}
}
