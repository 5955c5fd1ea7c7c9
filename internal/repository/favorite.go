package repository

import (
	"context"
	"log/slog"

	"xhubsell/internal/models"
	"xhubsell/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FavoriteRepository defines persistence operations for favorites.
type FavoriteRepository interface {
	// Get returns the favorite for the pair, or nil when none exists.
	Get(ctx context.Context, userID, sellerID uint) (*models.Favorite, error)
	// Insert adds the pair and reports whether a row was written; a
	// concurrent duplicate yields false rather than an error.
	Insert(ctx context.Context, userID, sellerID uint) (bool, error)
	Delete(ctx context.Context, id uint) error
	ListSellerIDs(ctx context.Context, userID uint) ([]uint, error)
}

type favoriteRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewFavoriteRepository returns a new FavoriteRepository implementation.
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db, log: observability.NewRepoLogger("favorites")}
}

func (r *favoriteRepository) Get(ctx context.Context, userID, sellerID uint) (*models.Favorite, error) {
	var fav models.Favorite
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND seller_id = ?", userID, sellerID).
		Limit(1).
		Find(&fav)
	if result.Error != nil {
		return nil, models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &fav, nil
}

func (r *favoriteRepository) Insert(ctx context.Context, userID, sellerID uint) (bool, error) {
	fav := models.Favorite{UserID: userID, SellerID: sellerID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "seller_id"}},
			DoNothing: true,
		}).
		Create(&fav)
	if result.Error != nil {
		if isUniqueConstraintError(result.Error) {
			return false, nil
		}
		r.log.LogError(ctx, result.Error, "insert")
		return false, models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	r.log.LogCreate(ctx, slog.Uint64("user_id", uint64(userID)), slog.Uint64("seller_id", uint64(sellerID)))
	return true, nil
}

func (r *favoriteRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Favorite{}, id).Error; err != nil {
		r.log.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	r.log.LogDelete(ctx, slog.Uint64("favorite_id", uint64(id)))
	return nil
}

// ListSellerIDs returns the user's favorited seller ids, newest first.
func (r *favoriteRepository) ListSellerIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Pluck("seller_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
