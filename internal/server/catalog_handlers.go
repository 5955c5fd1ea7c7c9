package server

import (
	"strconv"

	"xhubsell/internal/catalog"
	"xhubsell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SearchCatalog handles GET /api/public/catalog/search
func (s *Server) SearchCatalog(c *fiber.Ctx) error {
	raw := catalog.RawParams{
		Query:         c.Query("q"),
		Status:        c.Query("status"),
		Category:      c.Query("category"),
		MinRating:     c.Query("minRating"),
		MaxRating:     c.Query("maxRating"),
		MinPrice:      c.Query("minPrice"),
		MaxPrice:      c.Query("maxPrice"),
		Languages:     c.Query("languages"),
		Sort:          c.Query("sort"),
		Page:          c.Query("page"),
		Limit:         c.Query("limit"),
		FavoritesOnly: c.Query("favoritesOnly"),
	}

	v := viewer(c)
	// userId is accepted only as a restatement of the token identity.
	if requested := c.Query("userId"); requested != "" {
		id, err := strconv.ParseUint(requested, 10, 64)
		if err != nil || v == nil || uint(id) != *v {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("userId must match the authenticated user"))
		}
	}

	result, err := s.catalogService.Search(c.UserContext(), raw, v)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(result)
}

// TopSellers handles GET /api/public/sellers/top
func (s *Server) TopSellers(c *fiber.Ctx) error {
	p := parsePagination(c, catalog.DefaultTopSellersLimit)
	sellers, err := s.catalogService.TopSellers(c.UserContext(), p.Limit, p.Offset, viewer(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(sellers)
}

// GetCategories handles GET /api/public/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.catalogService.Categories(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(categories)
}
