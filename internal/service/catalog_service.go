package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"xhubsell/internal/cache"
	"xhubsell/internal/catalog"
	"xhubsell/internal/models"
	"xhubsell/internal/observability"
	"xhubsell/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// CatalogCacheFlag enables cache-aside for anonymous catalog reads.
const CatalogCacheFlag = "catalog_cache"

// FlagChecker reports whether a feature flag is on for a user.
type FlagChecker interface {
	Enabled(name string, userID uint) bool
}

// CatalogService answers public catalog reads.
type CatalogService struct {
	store      catalog.Store
	categories repository.CategoryRepository
	flags      FlagChecker
	cacheTTL   time.Duration
}

// NewCatalogService wires the catalog service. flags may be nil.
func NewCatalogService(store catalog.Store, categories repository.CategoryRepository, flags FlagChecker, cacheTTL time.Duration) *CatalogService {
	if cacheTTL <= 0 {
		cacheTTL = cache.CategoriesTTL
	}
	return &CatalogService{store: store, categories: categories, flags: flags, cacheTTL: cacheTTL}
}

// cacheable reports whether a read may be served from Redis. Viewer-specific
// results carry isFavorited and are never shared.
func (s *CatalogService) cacheable(viewer *uint) bool {
	if viewer != nil || s.flags == nil {
		return false
	}
	return s.flags.Enabled(CatalogCacheFlag, 0)
}

// Search parses raw, composes the query and projects the page.
func (s *CatalogService) Search(ctx context.Context, raw catalog.RawParams, viewer *uint) (result *catalog.SearchResult, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "CatalogService", "Search")
	defer func() { observability.EndSpan(span, err) }()

	filter, err := catalog.ParseFilter(raw)
	if err != nil {
		return nil, err
	}
	if filter.FavoritesOnly && viewer == nil {
		// favoritesOnly without a viewer is ignored rather than rejected.
		filter.FavoritesOnly = false
	}
	span.SetAttributes(
		attribute.String("catalog.sort", string(filter.Sort)),
		attribute.Int("catalog.page", filter.Page),
		attribute.Int("catalog.limit", filter.Limit),
	)
	observability.CatalogSearches.WithLabelValues(string(filter.Sort)).Inc()

	run := func(dst *catalog.SearchResult) error {
		records, total, err := s.store.Search(ctx, catalog.Compose(filter, viewer))
		if err != nil {
			return err
		}
		dst.Sellers = catalog.Project(records)
		dst.Pagination = catalog.NewPagination(filter.Page, filter.Limit, total)
		return nil
	}

	result = &catalog.SearchResult{}
	if s.cacheable(viewer) {
		key, keyErr := searchFingerprint(filter)
		if keyErr == nil {
			if err := cache.Aside(ctx, cache.SearchKey(key), result, s.cacheTTL, func() error { return run(result) }); err != nil {
				return nil, err
			}
			return result, nil
		}
	}
	if err := run(result); err != nil {
		return nil, err
	}
	return result, nil
}

// searchFingerprint hashes the normalized filter so equivalent raw inputs
// share a cache entry.
func searchFingerprint(f catalog.Filter) (string, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:16]), nil
}

// TopSellers lists active sellers by rating then review count.
func (s *CatalogService) TopSellers(ctx context.Context, limit, offset int, viewer *uint) (views []catalog.SellerView, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "CatalogService", "TopSellers")
	defer func() { observability.EndSpan(span, err) }()

	q := catalog.TopSellers(limit, offset, viewer)
	run := func() error {
		records, _, err := s.store.Search(ctx, q)
		if err != nil {
			return err
		}
		views = catalog.Project(records)
		return nil
	}

	if s.cacheable(viewer) {
		err = cache.Aside(ctx, cache.TopSellersKey(q.Window.Limit, q.Window.Offset), &views, s.cacheTTL, run)
	} else {
		err = run()
	}
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []catalog.SellerView{}
	}
	return views, nil
}

// Categories lists the taxonomy with distinct seller counts.
func (s *CatalogService) Categories(ctx context.Context) (out []models.CategoryWithCount, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "CatalogService", "Categories")
	defer func() { observability.EndSpan(span, err) }()

	run := func() error {
		out, err = s.categories.ListWithSellerCounts(ctx)
		return err
	}
	if s.cacheable(nil) {
		err = cache.Aside(ctx, cache.CategoriesKey, &out, s.cacheTTL, run)
	} else {
		err = run()
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.CategoryWithCount{}
	}
	return out, nil
}
