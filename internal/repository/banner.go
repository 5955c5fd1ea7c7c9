package repository

import (
	"context"
	"errors"

	"xhubsell/internal/models"
	"xhubsell/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BannerFilter narrows a banner listing. Nil fields do not filter.
type BannerFilter struct {
	Active   *bool
	Position *models.BannerPosition
}

// BannerRepository defines persistence operations for banners.
type BannerRepository interface {
	List(ctx context.Context, f BannerFilter) ([]models.Banner, error)
	GetByID(ctx context.Context, id uint) (*models.Banner, error)
	// AddImpressions increments the stored counter by n and returns the new total.
	AddImpressions(ctx context.Context, id uint, n int64) (int64, error)
	Upsert(ctx context.Context, banners []models.Banner) error
}

type bannerRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewBannerRepository returns a new BannerRepository implementation.
func NewBannerRepository(db *gorm.DB) BannerRepository {
	return &bannerRepository{db: db, log: observability.NewRepoLogger("banners")}
}

func (r *bannerRepository) List(ctx context.Context, f BannerFilter) ([]models.Banner, error) {
	q := r.db.WithContext(ctx).Model(&models.Banner{})
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	if f.Position != nil {
		q = q.Where("position = ?", *f.Position)
	}
	banners := []models.Banner{}
	if err := q.Order("id ASC").Find(&banners).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return banners, nil
}

func (r *bannerRepository) GetByID(ctx context.Context, id uint) (*models.Banner, error) {
	var banner models.Banner
	if err := r.db.WithContext(ctx).First(&banner, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Banner", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &banner, nil
}

func (r *bannerRepository) AddImpressions(ctx context.Context, id uint, n int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Banner{}).
		Where("id = ?", id).
		UpdateColumn("impressions", gorm.Expr("impressions + ?", n))
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "add_impressions")
		return 0, models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, models.NewNotFoundError("Banner", id)
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Banner{}).Where("id = ?", id).Pluck("impressions", &total).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

// Upsert inserts banners keyed by id, leaving impressions untouched.
func (r *bannerRepository) Upsert(ctx context.Context, banners []models.Banner) error {
	if len(banners) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "description", "image_url", "link", "position", "is_active", "is_external", "updated_at",
		}),
	}).Create(&banners).Error
	if err != nil {
		r.log.LogError(ctx, err, "upsert")
		return models.NewInternalError(err)
	}
	return nil
}
