package server

import (
	"xhubsell/internal/models"
	"xhubsell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetBanners handles GET /api/banners?active&position
func (s *Server) GetBanners(c *fiber.Ctx) error {
	filter, err := service.ParseBannerFilter(c.Query("active"), c.Query("position"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	banners, err := s.bannerService.List(c.UserContext(), filter)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(banners)
}

// RecordBannerImpression handles POST /api/banners/:id/impression
func (s *Server) RecordBannerImpression(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	result, err := s.bannerService.RecordImpression(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(result)
}

// GetAnnouncements handles GET /api/announcements?active
func (s *Server) GetAnnouncements(c *fiber.Ctx) error {
	items, err := s.announcementService.List(c.UserContext(), c.Query("active"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(items)
}

// GetPlatformStats handles GET /api/analytics/stats
func (s *Server) GetPlatformStats(c *fiber.Ctx) error {
	stats, err := s.analyticsService.Stats(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(stats)
}
