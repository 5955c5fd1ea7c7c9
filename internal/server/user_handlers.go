package server

import (
	"xhubsell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMySellerProfile handles GET /api/seller/profile
func (s *Server) GetMySellerProfile(c *fiber.Ctx) error {
	profile, err := s.userService.SellerProfile(c.UserContext(), mustUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(profile)
}

// UpdateUserRole handles PATCH /api/admin/users/:id/role
func (s *Server) UpdateUserRole(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.UpdateRole(c.UserContext(), id, req.Role)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}
