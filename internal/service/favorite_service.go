package service

import (
	"context"
	"log/slog"

	"xhubsell/internal/catalog"
	"xhubsell/internal/models"
	"xhubsell/internal/notifications"
	"xhubsell/internal/observability"
	"xhubsell/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	msgFavoriteExists  = "Seller already in favorites"
	msgFavoriteAdded   = "Seller added to favorites"
	msgFavoriteMissing = "Seller not in favorites"
	msgFavoriteRemoved = "Seller removed from favorites"
)

// FavoriteResult is the body of add/remove favorite responses.
type FavoriteResult struct {
	Message     string `json:"message"`
	IsFavorited bool   `json:"isFavorited"`
}

// FavoriteService toggles a user's favorite sellers. Both operations are
// idempotent; the unique (user_id, seller_id) index arbitrates races.
type FavoriteService struct {
	favorites repository.FavoriteRepository
	sellers   repository.SellerRepository
	events    EventPublisher
}

// EventPublisher delivers account events to a user. Failures never fail the
// operation that produced the event.
type EventPublisher interface {
	PublishUser(ctx context.Context, userID uint, ev notifications.Event) error
}

// NewFavoriteService wires the favorite service.
func NewFavoriteService(favorites repository.FavoriteRepository, sellers repository.SellerRepository) *FavoriteService {
	return &FavoriteService{favorites: favorites, sellers: sellers}
}

// WithEvents makes Add notify the seller's account about new favorites.
func (s *FavoriteService) WithEvents(p EventPublisher) *FavoriteService {
	s.events = p
	return s
}

func (s *FavoriteService) Add(ctx context.Context, userID, sellerID uint) (result *FavoriteResult, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "FavoriteService", "Add",
		attribute.Int64("user.id", int64(userID)), attribute.Int64("seller.id", int64(sellerID)))
	defer func() {
		observability.FavoriteToggles.WithLabelValues("add", favoriteOutcome(result, err)).Inc()
		observability.EndSpan(span, err)
	}()

	exists, err := s.sellers.Exists(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("Seller", sellerID)
	}

	existing, err := s.favorites.Get(ctx, userID, sellerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &FavoriteResult{Message: msgFavoriteExists, IsFavorited: true}, nil
	}

	inserted, err := s.favorites.Insert(ctx, userID, sellerID)
	if err != nil {
		return nil, err
	}
	if !inserted {
		slog.DebugContext(ctx, "favorite insert lost race",
			slog.Uint64("user_id", uint64(userID)), slog.Uint64("seller_id", uint64(sellerID)))
		return &FavoriteResult{Message: msgFavoriteExists, IsFavorited: true}, nil
	}
	s.notifySeller(ctx, userID, sellerID)
	return &FavoriteResult{Message: msgFavoriteAdded, IsFavorited: true}, nil
}

func (s *FavoriteService) notifySeller(ctx context.Context, userID, sellerID uint) {
	if s.events == nil {
		return
	}
	seller, err := s.sellers.GetByID(ctx, sellerID)
	if err == nil {
		err = s.events.PublishUser(ctx, seller.UserID, notifications.Event{
			Type:     notifications.EventFavoriteAdded,
			UserID:   userID,
			SellerID: sellerID,
		})
	}
	if err != nil {
		slog.WarnContext(ctx, "favorite notification not sent",
			slog.Uint64("seller_id", uint64(sellerID)), slog.String("error", err.Error()))
	}
}

func (s *FavoriteService) Remove(ctx context.Context, userID, sellerID uint) (result *FavoriteResult, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "FavoriteService", "Remove",
		attribute.Int64("user.id", int64(userID)), attribute.Int64("seller.id", int64(sellerID)))
	defer func() {
		observability.FavoriteToggles.WithLabelValues("remove", favoriteOutcome(result, err)).Inc()
		observability.EndSpan(span, err)
	}()

	existing, err := s.favorites.Get(ctx, userID, sellerID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return &FavoriteResult{Message: msgFavoriteMissing, IsFavorited: false}, nil
	}
	if err := s.favorites.Delete(ctx, existing.ID); err != nil {
		return nil, err
	}
	return &FavoriteResult{Message: msgFavoriteRemoved, IsFavorited: false}, nil
}

// List returns the user's favorited sellers regardless of seller status.
func (s *FavoriteService) List(ctx context.Context, userID uint, page, limit int) (*catalog.SearchResult, error) {
	page, limit = catalog.NormalizeWindow(page, limit)
	f := catalog.Filter{
		AllStatuses:   true,
		FavoritesOnly: true,
		Sort:          catalog.SortNewest,
		Page:          page,
		Limit:         limit,
	}
	records, total, err := s.sellers.Search(ctx, catalog.Compose(f, &userID))
	if err != nil {
		return nil, err
	}
	return &catalog.SearchResult{
		Sellers:    catalog.Project(records),
		Pagination: catalog.NewPagination(page, limit, total),
	}, nil
}

func favoriteOutcome(r *FavoriteResult, err error) string {
	switch {
	case err != nil:
		return "error"
	case r.Message == msgFavoriteAdded || r.Message == msgFavoriteRemoved:
		return "changed"
	default:
		return "noop"
	}
}
