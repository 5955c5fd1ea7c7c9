// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"xhubsell/internal/cache"
	"xhubsell/internal/models"
	"xhubsell/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// Create inserts the user and, when profile is non-nil, its seller
	// profile in the same transaction.
	Create(ctx context.Context, user *models.User, profile *models.SellerProfile) error
	// UpdateRole sets the role and, when switching to SELLER, creates the
	// missing seller profile in the same transaction.
	UpdateRole(ctx context.Context, id uint, role models.Role) (*models.User, error)
	CountByRole(ctx context.Context, role models.Role) (int64, error)
}

type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, log: observability.NewRepoLogger("users")}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).Preload("SellerProfile").First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := readDB(r.db).WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := readDB(r.db).WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User, profile *models.SellerProfile) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("SellerProfile").Create(user).Error; err != nil {
			return err
		}
		if profile == nil {
			return nil
		}
		profile.UserID = user.ID
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		user.SellerProfile = profile
		return nil
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return uniqueUserError(err)
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, slog.Uint64("user_id", uint64(user.ID)), slog.String("role", string(user.Role)))
	return nil
}

// uniqueUserError names the duplicated field when the driver reports it.
func uniqueUserError(err error) *models.AppError {
	name := constraintName(err)
	switch {
	case strings.Contains(name, "email"):
		return models.NewConflictError("Email already registered")
	case strings.Contains(name, "username"):
		return models.NewConflictError("Username already taken")
	default:
		return models.NewConflictError("User already exists")
	}
}

func (r *userRepository) UpdateRole(ctx context.Context, id uint, role models.Role) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("SellerProfile").First(&user, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Update("role", role).Error; err != nil {
			return err
		}
		user.Role = role
		if role != models.RoleSeller || user.SellerProfile != nil {
			return nil
		}
		profile := &models.SellerProfile{
			UserID: user.ID,
			Title:  models.DefaultSellerTitle(&user),
			Status: models.SellerStatusPendingVerification,
		}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		user.SellerProfile = profile
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		r.log.LogError(ctx, err, "update_role")
		return nil, models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	if role == models.RoleSeller {
		cache.InvalidateCatalog(ctx)
	}
	r.log.LogUpdate(ctx, slog.Uint64("user_id", uint64(id)), slog.String("role", string(role)))
	return &user, nil
}

func (r *userRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.User{}).Where("role = ?", role).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
