package server

import (
	"time"

	"xhubsell/internal/middleware"
	"xhubsell/internal/models"
	"xhubsell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	result, err := s.authService.Register(c.UserContext(), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	result, err := s.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(result)
}

// Refresh handles POST /api/auth/refresh
func (s *Server) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	result, err := s.authService.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(result)
}

// Logout handles POST /api/auth/logout by revoking the presented access token.
func (s *Server) Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals(middleware.LocalTokenID).(string)
	expiry, _ := c.Locals(middleware.LocalTokenExpiry).(time.Time)

	if err := s.authService.Logout(c.UserContext(), jti, expiry); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// Me handles GET /api/auth/me
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.authService.Me(c.UserContext(), mustUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}
