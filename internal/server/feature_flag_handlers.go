package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns configured feature flags and their state for the calling admin.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	// nil-safe: a server built without flags reports empty maps.
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(mustUserID(c)),
		"skipped":   s.featureFlags.Skipped(),
	})
}
