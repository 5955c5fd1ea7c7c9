// Package server contains the HTTP handlers for the marketplace API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"xhubsell/internal/auth"
	"xhubsell/internal/bootstrap"
	"xhubsell/internal/cache"
	"xhubsell/internal/config"
	"xhubsell/internal/database"
	"xhubsell/internal/featureflags"
	"xhubsell/internal/middleware"
	"xhubsell/internal/models"
	"xhubsell/internal/notifications"
	"xhubsell/internal/repository"
	"xhubsell/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	signer         *auth.Signer
	featureFlags   *featureflags.Manager

	authService         *service.AuthService
	catalogService      *service.CatalogService
	favoriteService     *service.FavoriteService
	userService         *service.UserService
	bannerService       *service.BannerService
	announcementService *service.AnnouncementService
	analyticsService    *service.AnalyticsService
}

// NewServer prepares the runtime (database, schema, Redis, built-in content)
// and wires the server.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{
		ApplySchema:  true,
		SeedBuiltIns: cfg.SeedBuiltIns,
	})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// performs schema setup and seeding. redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	signer, err := auth.NewSignerFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("token signer: %w", err)
	}
	if redisClient != nil && cache.GetClient() != redisClient {
		cache.SetClient(redisClient)
	}

	userRepo := repository.NewUserRepository(db)
	sellerRepo := repository.NewSellerRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	bannerRepo := repository.NewBannerRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)

	flags := featureflags.NewManager(cfg.FeatureFlags)
	if skipped := flags.Skipped(); len(skipped) > 0 {
		slog.Warn("ignoring malformed FEATURE_FLAGS entries", slog.Any("entries", skipped))
	}

	events := notifications.NewNotifier(redisClient)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("xhubsell-api"),
		signer:         signer,
		featureFlags:   flags,

		authService:         service.NewAuthService(userRepo, signer, redisClient),
		catalogService:      service.NewCatalogService(sellerRepo, categoryRepo, flags, cfg.CatalogCacheTTL()),
		favoriteService:     service.NewFavoriteService(favoriteRepo, sellerRepo).WithEvents(events),
		userService:         service.NewUserService(userRepo, sellerRepo).WithEvents(events),
		bannerService:       service.NewBannerService(bannerRepo, redisClient),
		announcementService: service.NewAnnouncementService(announcementRepo),
		analyticsService:    service.NewAnalyticsService(userRepo, sellerRepo, categoryRepo),
	}, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New(recover.Config{EnableStackTrace: !s.config.IsProduction()}))
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so that rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
				Code:  "RATE_LIMITED",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	api := app.Group("/api")
	api.Get("/health/live", s.LivenessCheck)
	api.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "XHubSell Backend Metrics Dashboard",
	}))

	requireAuth := middleware.AuthRequired(s.signer, s.redis)
	optionalAuth := middleware.OptionalAuth(s.signer, s.redis)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	authGroup.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	authGroup.Post("/refresh", middleware.RateLimit(s.redis, 30, 5*time.Minute, "refresh"), s.Refresh)
	authGroup.Post("/logout", requireAuth, s.Logout)
	authGroup.Get("/me", requireAuth, s.Me)

	public := api.Group("/public")
	public.Get("/catalog/search", optionalAuth,
		middleware.RateLimit(s.redis, 60, time.Minute, "catalog_search"), s.SearchCatalog)
	public.Get("/sellers/top", optionalAuth, s.TopSellers)
	public.Get("/categories", s.GetCategories)

	favorites := public.Group("/favorites", requireAuth)
	favorites.Get("/", s.ListFavorites)
	favorites.Post("/:sellerId", middleware.RateLimit(s.redis, 60, time.Minute, "favorites"), s.AddFavorite)
	favorites.Delete("/:sellerId", middleware.RateLimit(s.redis, 60, time.Minute, "favorites"), s.RemoveFavorite)

	banners := api.Group("/banners")
	banners.Get("/", s.GetBanners)
	banners.Post("/:id/impression", middleware.RateLimit(s.redis, 120, time.Minute, "banner_impression"), s.RecordBannerImpression)

	api.Get("/announcements", s.GetAnnouncements)
	api.Get("/analytics/stats", s.GetPlatformStats)

	seller := api.Group("/seller", requireAuth, middleware.RequireRoles(models.RoleSeller))
	seller.Get("/profile", s.GetMySellerProfile)

	admin := api.Group("/admin", requireAuth, middleware.RequireRoles(models.RoleAdmin))
	admin.Get("/feature-flags", s.GetFeatureFlags)
	admin.Patch("/users/:id/role", s.UpdateUserRole)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db == nil || database.Ping(ctx, s.db) != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// ErrorHandler renders errors that escape handlers, including recovered panics.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound:
			return models.RespondWithError(c, fe.Code, models.NewNotFoundError("Route", c.Path()))
		case fiber.StatusMethodNotAllowed:
			return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message, Code: "METHOD_NOT_ALLOWED"})
		}
		if fe.Code < fiber.StatusInternalServerError {
			return models.RespondWithError(c, fe.Code, models.NewValidationError(fe.Message))
		}
	}
	return models.RespondWithAppError(c, err)
}

// NewApp builds the Fiber app with middleware and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "XHubSell API",
		ErrorHandler: ErrorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.NewApp()
	slog.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			slog.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			slog.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			slog.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	slog.Info("server shutdown complete")
	return nil
}
