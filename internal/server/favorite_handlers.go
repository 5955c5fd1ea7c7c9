package server

import (
	"xhubsell/internal/catalog"
	"xhubsell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AddFavorite handles POST /api/public/favorites/:sellerId
func (s *Server) AddFavorite(c *fiber.Ctx) error {
	sellerID, err := parseID(c, "sellerId")
	if err != nil {
		return nil
	}
	result, err := s.favoriteService.Add(c.UserContext(), mustUserID(c), sellerID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(result)
}

// RemoveFavorite handles DELETE /api/public/favorites/:sellerId
func (s *Server) RemoveFavorite(c *fiber.Ctx) error {
	sellerID, err := parseID(c, "sellerId")
	if err != nil {
		return nil
	}
	result, err := s.favoriteService.Remove(c.UserContext(), mustUserID(c), sellerID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(result)
}

// ListFavorites handles GET /api/public/favorites
func (s *Server) ListFavorites(c *fiber.Ctx) error {
	page := c.QueryInt("page", catalog.DefaultPage)
	limit := c.QueryInt("limit", catalog.DefaultLimit)
	result, err := s.favoriteService.List(c.UserContext(), mustUserID(c), page, limit)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(result)
}
