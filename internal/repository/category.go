package repository

import (
	"context"
	"log/slog"

	"xhubsell/internal/models"
	"xhubsell/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	ListWithSellerCounts(ctx context.Context) ([]models.CategoryWithCount, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Upsert(ctx context.Context, categories []models.Category) error
	Count(ctx context.Context) (int64, error)
}

type categoryRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCategoryRepository returns a new CategoryRepository implementation.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db, log: observability.NewRepoLogger("categories")}
}

// ListWithSellerCounts returns every category ordered by English name with
// the number of distinct sellers linked to it.
func (r *categoryRepository) ListWithSellerCounts(ctx context.Context) ([]models.CategoryWithCount, error) {
	defer observability.TrackQuery("list_with_counts", "categories")()

	out := []models.CategoryWithCount{}
	err := readDB(r.db).WithContext(ctx).
		Table("categories").
		Select("categories.*, COUNT(DISTINCT seller_categories.seller_id) AS seller_count").
		Joins("LEFT JOIN seller_categories ON seller_categories.category_id = categories.id").
		Group("categories.id").
		Order("categories.name_en ASC, categories.id ASC").
		Scan(&out).Error
	if err != nil {
		r.log.LogError(ctx, err, "list")
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	result := readDB(r.db).WithContext(ctx).Where("slug = ?", slug).Limit(1).Find(&category)
	if result.Error != nil {
		return nil, models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Category", slug)
	}
	return &category, nil
}

// Upsert inserts categories keyed by slug, refreshing names, description
// and icon of existing rows.
func (r *categoryRepository) Upsert(ctx context.Context, categories []models.Category) error {
	if len(categories) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name_en", "name_ru", "description", "icon", "updated_at"}),
	}).Create(&categories).Error
	if err != nil {
		r.log.LogError(ctx, err, "upsert")
		return models.NewInternalError(err)
	}
	r.log.LogUpdate(ctx, slog.Int("categories", len(categories)))
	return nil
}

func (r *categoryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Category{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
