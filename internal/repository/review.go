package repository

import (
	"context"
	"log/slog"

	"xhubsell/internal/models"
	"xhubsell/internal/observability"

	"gorm.io/gorm"
)

// ReviewRepository keeps seller rating aggregates in step with reviews.
type ReviewRepository interface {
	Create(ctx context.Context, reviews ...*models.Review) error
	// RecomputeSellerAggregates sets rating and review_count of the given
	// sellers (all sellers when none are given) from their reviews.
	RecomputeSellerAggregates(ctx context.Context, sellerIDs ...uint) error
}

type reviewRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewReviewRepository returns a new ReviewRepository implementation.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db, log: observability.NewRepoLogger("reviews")}
}

func (r *reviewRepository) Create(ctx context.Context, reviews ...*models.Review) error {
	if len(reviews) == 0 {
		return nil
	}
	for _, rv := range reviews {
		if rv.Rating < 1 || rv.Rating > 5 {
			return models.NewValidationReason("invalid_rating", "rating must be between 1 and 5")
		}
	}
	if err := r.db.WithContext(ctx).Create(reviews).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, slog.Int("reviews", len(reviews)))
	return nil
}

const recomputeAggregatesSQL = `UPDATE seller_profiles SET
	review_count = (SELECT COUNT(*) FROM reviews WHERE reviews.seller_id = seller_profiles.id),
	rating = COALESCE((SELECT ROUND(AVG(reviews.rating) * 10) / 10.0 FROM reviews WHERE reviews.seller_id = seller_profiles.id), 0)`

func (r *reviewRepository) RecomputeSellerAggregates(ctx context.Context, sellerIDs ...uint) error {
	db := r.db.WithContext(ctx)
	var err error
	if len(sellerIDs) == 0 {
		err = db.Exec(recomputeAggregatesSQL).Error
	} else {
		err = db.Exec(recomputeAggregatesSQL+" WHERE seller_profiles.id IN ?", sellerIDs).Error
	}
	if err != nil {
		r.log.LogError(ctx, err, "recompute_aggregates")
		return models.NewInternalError(err)
	}
	r.log.LogUpdate(ctx, slog.Int("sellers", len(sellerIDs)))
	return nil
}
