// Package bootstrap prepares the database, cache and built-in content
// before the HTTP server starts.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"xhubsell/internal/cache"
	"xhubsell/internal/config"
	"xhubsell/internal/database"
	"xhubsell/internal/models"
	"xhubsell/internal/repository"
	"xhubsell/internal/seed"
	"xhubsell/internal/service"
	"xhubsell/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	ApplySchema  bool
	SeedBuiltIns bool
}

// InitRuntime connects to DB and Redis, brings the schema up to date and
// optionally runs built-in seeding. The Redis client is nil when Redis is
// unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return nil, nil, fmt.Errorf("schema setup failed: %w", err)
		}
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := Prepare(ctx, cfg, db, opts); err != nil {
		return nil, nil, err
	}
	return db, r, nil
}

// Prepare runs the data steps of InitRuntime against an open database.
func Prepare(ctx context.Context, cfg *config.Config, db *gorm.DB, opts Options) error {
	if opts.SeedBuiltIns {
		if err := seed.BuiltIns(ctx, db); err != nil {
			return fmt.Errorf("failed to seed built-in content: %w", err)
		}
	}
	if err := EnsureAdmin(ctx, cfg, repository.NewUserRepository(db)); err != nil {
		return fmt.Errorf("failed to bootstrap admin account: %w", err)
	}
	return nil
}

// EnsureAdmin makes the ADMIN_EMAIL account exist with role ADMIN. An
// existing account keeps its password and is promoted if needed.
func EnsureAdmin(ctx context.Context, cfg *config.Config, users repository.UserRepository) error {
	if cfg == nil || users == nil {
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" {
		return nil
	}

	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.Role == models.RoleAdmin {
			return nil
		}
		if _, err := users.UpdateRole(ctx, existing.ID, models.RoleAdmin); err != nil {
			return err
		}
		slog.InfoContext(ctx, "promoted bootstrap account to admin", slog.Uint64("user_id", uint64(existing.ID)))
		return nil
	}

	if err := validation.ValidatePassword(cfg.AdminPassword); err != nil {
		return fmt.Errorf("ADMIN_PASSWORD: %w", err)
	}
	username := strings.TrimSpace(cfg.AdminUsername)
	if username == "" {
		username = "admin"
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), service.PasswordHashCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		Email:      email,
		Username:   username,
		Password:   string(hashed),
		FirstName:  "Platform",
		LastName:   "Admin",
		Role:       models.RoleAdmin,
		Language:   models.LanguageEN,
		IsVerified: true,
	}
	if err := users.Create(ctx, admin, nil); err != nil {
		return err
	}
	slog.InfoContext(ctx, "bootstrap admin created", slog.Uint64("user_id", uint64(admin.ID)), slog.String("email", email))
	return nil
}
