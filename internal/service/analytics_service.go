package service

import (
	"context"
	"time"

	"xhubsell/internal/models"
	"xhubsell/internal/observability"
	"xhubsell/internal/repository"

	"golang.org/x/sync/errgroup"
)

// PlatformLaunchYear is the year the marketplace opened.
const PlatformLaunchYear = 2020

// PlatformStats is the body of the analytics stats response.
type PlatformStats struct {
	TotalSellers    int64 `json:"totalSellers"`
	ActiveClients   int64 `json:"activeClients"`
	TotalCategories int64 `json:"totalCategories"`
	PlatformYears   int   `json:"platformYears"`
}

// AnalyticsService computes headline platform numbers.
type AnalyticsService struct {
	users      repository.UserRepository
	sellers    repository.SellerRepository
	categories repository.CategoryRepository
	now        func() time.Time
}

func NewAnalyticsService(users repository.UserRepository, sellers repository.SellerRepository, categories repository.CategoryRepository) *AnalyticsService {
	return &AnalyticsService{users: users, sellers: sellers, categories: categories, now: time.Now}
}

// Stats counts active sellers, client accounts and categories concurrently.
func (s *AnalyticsService) Stats(ctx context.Context) (stats *PlatformStats, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "AnalyticsService", "Stats")
	defer func() { observability.EndSpan(span, err) }()

	stats = &PlatformStats{PlatformYears: s.now().Year() - PlatformLaunchYear}
	if stats.PlatformYears < 0 {
		stats.PlatformYears = 0
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalSellers, err = s.sellers.CountByStatus(gctx, models.SellerStatusActive)
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveClients, err = s.users.CountByRole(gctx, models.RoleClient)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalCategories, err = s.categories.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
