package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"xhubsell/internal/cache"
	"xhubsell/internal/models"
	"xhubsell/internal/observability"
	"xhubsell/internal/repository"

	"github.com/redis/go-redis/v9"
)

// ImpressionResult is the body of an impression response.
type ImpressionResult struct {
	Success     bool      `json:"success"`
	BannerID    uint      `json:"bannerId"`
	Impressions int64     `json:"impressions"`
	Timestamp   time.Time `json:"timestamp"`
}

// BannerService lists banners and counts their impressions. Impressions are
// buffered in Redis and folded into the database column on read.
type BannerService struct {
	banners repository.BannerRepository
	redis   *redis.Client
	now     func() time.Time
}

// NewBannerService wires the banner service. rdb may be nil, in which case
// every impression is written to the database directly.
func NewBannerService(banners repository.BannerRepository, rdb *redis.Client) *BannerService {
	return &BannerService{banners: banners, redis: rdb, now: time.Now}
}

// ParseBannerFilter validates the active and position query values.
func ParseBannerFilter(active, position string) (repository.BannerFilter, error) {
	var f repository.BannerFilter
	if active = strings.TrimSpace(active); active != "" {
		v, err := strconv.ParseBool(active)
		if err != nil {
			return f, models.NewValidationReason("invalid_active", "active must be true or false")
		}
		f.Active = &v
	}
	if position = strings.ToLower(strings.TrimSpace(position)); position != "" {
		p := models.BannerPosition(position)
		switch p {
		case models.BannerPositionTop, models.BannerPositionInline, models.BannerPositionSidebar:
			f.Position = &p
		default:
			return f, models.NewValidationReason("invalid_position", "position must be one of top, inline, sidebar")
		}
	}
	return f, nil
}

func (s *BannerService) List(ctx context.Context, f repository.BannerFilter) (banners []models.Banner, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "BannerService", "List")
	defer func() { observability.EndSpan(span, err) }()

	banners, err = s.banners.List(ctx, f)
	if err != nil {
		return nil, err
	}
	for i := range banners {
		pending := s.drain(ctx, banners[i].ID)
		if pending == 0 {
			continue
		}
		total, err := s.banners.AddImpressions(ctx, banners[i].ID, pending)
		if err != nil {
			s.restore(ctx, banners[i].ID, pending)
			return nil, err
		}
		banners[i].Impressions = total
	}
	return banners, nil
}

// drain takes the buffered impression count for a banner.
func (s *BannerService) drain(ctx context.Context, id uint) int64 {
	if s.redis == nil {
		return 0
	}
	n, err := s.redis.GetDel(ctx, cache.BannerImpressionsKey(id)).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues("getdel").Inc()
			slog.WarnContext(ctx, "failed to drain banner impressions", slog.Uint64("banner_id", uint64(id)), slog.String("error", err.Error()))
		}
		return 0
	}
	return n
}

// restore puts a drained count back into the buffer after a failed flush.
func (s *BannerService) restore(ctx context.Context, id uint, n int64) {
	if err := s.redis.IncrBy(ctx, cache.BannerImpressionsKey(id), n).Err(); err != nil {
		observability.RedisErrorRate.WithLabelValues("incrby").Inc()
		slog.ErrorContext(ctx, "banner impressions lost after failed flush",
			slog.Uint64("banner_id", uint64(id)), slog.Int64("count", n), slog.String("error", err.Error()))
	}
}

// RecordImpression counts one view of a banner.
func (s *BannerService) RecordImpression(ctx context.Context, id uint) (result *ImpressionResult, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "BannerService", "RecordImpression")
	defer func() { observability.EndSpan(span, err) }()

	banner, err := s.banners.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	total, err := s.increment(ctx, banner)
	if err != nil {
		return nil, err
	}
	return &ImpressionResult{Success: true, BannerID: id, Impressions: total, Timestamp: s.now().UTC()}, nil
}

func (s *BannerService) increment(ctx context.Context, banner *models.Banner) (int64, error) {
	if s.redis != nil {
		pending, err := s.redis.Incr(ctx, cache.BannerImpressionsKey(banner.ID)).Result()
		if err == nil {
			return banner.Impressions + pending, nil
		}
		observability.RedisErrorRate.WithLabelValues("incr").Inc()
		slog.WarnContext(ctx, "impression buffer unavailable, writing through",
			slog.Uint64("banner_id", uint64(banner.ID)), slog.String("error", err.Error()))
	}
	return s.banners.AddImpressions(ctx, banner.ID, 1)
}
