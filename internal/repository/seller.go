package repository

import (
	"context"
	"errors"
	"log/slog"

	"xhubsell/internal/catalog"
	"xhubsell/internal/models"
	"xhubsell/internal/observability"

	"gorm.io/gorm"
)

// SellerRepository defines persistence operations for seller profiles.
// It is the SQL implementation of catalog.Store.
type SellerRepository interface {
	catalog.Store
	GetByID(ctx context.Context, id uint) (*models.SellerProfile, error)
	GetByUserID(ctx context.Context, userID uint) (*models.SellerProfile, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, profile *models.SellerProfile) error
	SetCategories(ctx context.Context, sellerID uint, categoryIDs []uint) error
	CountByStatus(ctx context.Context, status models.SellerStatus) (int64, error)
}

type sellerRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewSellerRepository returns a new SellerRepository implementation.
func NewSellerRepository(db *gorm.DB) SellerRepository {
	return &sellerRepository{db: db, log: observability.NewRepoLogger(sellerTable)}
}

// Search runs the count and the windowed page as two reads sharing the
// same predicates, then batch-loads category links for the page.
func (r *sellerRepository) Search(ctx context.Context, q catalog.Query) ([]catalog.SellerRecord, int64, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "Search", sellerTable)
	var err error
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("search", sellerTable)()

	where, args := renderPredicate(q.Where)
	base := func() *gorm.DB {
		db := readDB(r.db).WithContext(ctx).Table(sellerTable).Joins(sellerJoinUsers)
		if where != "" {
			db = db.Where(where, args...)
		}
		return db
	}

	var total int64
	if err = base().Count(&total).Error; err != nil {
		r.log.LogError(ctx, err, "search_count")
		return nil, 0, models.NewInternalError(err)
	}

	records := []catalog.SellerRecord{}
	if total == 0 || q.Window.Offset >= int(total) {
		return records, total, nil
	}

	cols, colArgs := selectColumns(q.Viewer)
	page := base().Select(cols, colArgs...).Order(renderOrder(q.OrderBy))
	if q.Window.Limit > 0 {
		page = page.Limit(q.Window.Limit)
	}
	if q.Window.Offset > 0 {
		page = page.Offset(q.Window.Offset)
	}
	if err = page.Scan(&records).Error; err != nil {
		r.log.LogError(ctx, err, "search")
		return nil, 0, models.NewInternalError(err)
	}

	if err = r.attachCategories(ctx, records); err != nil {
		r.log.LogError(ctx, err, "search_categories")
		return nil, 0, models.NewInternalError(err)
	}

	r.log.LogRead(ctx, slog.Int("rows", len(records)), slog.Int64("total", total))
	return records, total, nil
}

func (r *sellerRepository) attachCategories(ctx context.Context, records []catalog.SellerRecord) error {
	if len(records) == 0 {
		return nil
	}
	ids := make([]uint, len(records))
	for i := range records {
		ids[i] = records[i].ID
	}

	var links []models.SellerCategory
	if err := readDB(r.db).WithContext(ctx).
		Preload("Category").
		Where("seller_id IN ?", ids).
		Order("id ASC").
		Find(&links).Error; err != nil {
		return err
	}

	bySeller := make(map[uint][]models.SellerCategory, len(records))
	for _, l := range links {
		bySeller[l.SellerID] = append(bySeller[l.SellerID], l)
	}
	for i := range records {
		records[i].Categories = bySeller[records[i].ID]
	}
	return nil
}

func (r *sellerRepository) GetByID(ctx context.Context, id uint) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	if err := readDB(r.db).WithContext(ctx).
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Categories.Category").
		First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Seller", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *sellerRepository) GetByUserID(ctx context.Context, userID uint) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	if err := readDB(r.db).WithContext(ctx).
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Categories.Category").
		Where("user_id = ?", userID).
		First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Seller profile for user", userID)
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *sellerRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.SellerProfile{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *sellerRepository) Create(ctx context.Context, profile *models.SellerProfile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Seller profile already exists")
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, slog.Uint64("seller_id", uint64(profile.ID)), slog.Uint64("user_id", uint64(profile.UserID)))
	return nil
}

// SetCategories replaces the seller's category links, keeping the given
// order so the first id becomes the primary category.
func (r *sellerRepository) SetCategories(ctx context.Context, sellerID uint, categoryIDs []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("seller_id = ?", sellerID).Delete(&models.SellerCategory{}).Error; err != nil {
			return err
		}
		seen := make(map[uint]bool, len(categoryIDs))
		for _, id := range categoryIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			if err := tx.Create(&models.SellerCategory{SellerID: sellerID, CategoryID: id}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "set_categories")
		return models.NewInternalError(err)
	}
	r.log.LogUpdate(ctx, slog.Uint64("seller_id", uint64(sellerID)), slog.Int("categories", len(categoryIDs)))
	return nil
}

func (r *sellerRepository) CountByStatus(ctx context.Context, status models.SellerStatus) (int64, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.SellerProfile{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
