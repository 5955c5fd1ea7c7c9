// Package database handles database connections and migrations.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"xhubsell/internal/config"
	"xhubsell/internal/middleware"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database connection instance.
var DB *gorm.DB

// ReadDB points at the read replica when DB_READ_HOST is configured.
var ReadDB *gorm.DB

// CustomGormLogger integrates GORM with slog
type CustomGormLogger struct {
	logger *slog.Logger
	Config logger.Config
}

// NewGormLogger returns a slog-backed GORM logger at warn level with a 200ms
// slow query threshold.
func NewGormLogger(l *slog.Logger) *CustomGormLogger {
	if l == nil {
		l = slog.Default()
	}
	return &CustomGormLogger{
		logger: l,
		Config: logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	}
}

// LogMode sets the logging level and returns a new interface instance.
func (l *CustomGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newlogger := *l
	newlogger.Config.LogLevel = level
	return &newlogger
}

// Info logs an informational message with context.
func (l *CustomGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Info {
		l.logger.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Warn logs a warning message with context.
func (l *CustomGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Warn {
		l.logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *CustomGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Error {
		l.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Trace logs trace-level information including SQL queries and execution time.
func (l *CustomGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.Config.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && l.Config.LogLevel >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.logger.ErrorContext(ctx, "GORM query error",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
	case elapsed > l.Config.SlowThreshold && l.Config.SlowThreshold != 0 && l.Config.LogLevel >= logger.Warn:
		l.logger.WarnContext(ctx, "GORM slow query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	case l.Config.LogLevel >= logger.Info:
		l.logger.InfoContext(ctx, "GORM query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	}
}

// PrimaryDSN builds the PostgreSQL connection string for the primary.
func PrimaryDSN(cfg *config.Config) string {
	return dsn(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
}

// ReadDSN builds the replica connection string, or "" when no replica is configured.
func ReadDSN(cfg *config.Config) string {
	if cfg.DBReadHost == "" {
		return ""
	}
	port := cfg.DBReadPort
	if port == "" {
		port = cfg.DBPort
	}
	user, password := cfg.DBReadUser, cfg.DBReadPassword
	if user == "" {
		user, password = cfg.DBUser, cfg.DBPassword
	}
	return dsn(cfg.DBReadHost, port, user, password, cfg.DBName, cfg.DBSSLMode)
}

func dsn(host, port, user, password, name, sslMode string) string {
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, name, sslMode)
}

// Connect opens the primary (and optional replica) connection using the
// provided configuration and returns the primary gorm DB instance.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := NewGormLogger(middleware.Logger)

	dbInstance, err := gorm.Open(postgres.Open(PrimaryDSN(cfg)), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := configurePool(dbInstance, cfg); err != nil {
		return nil, err
	}
	middleware.Logger.Info("Database connected successfully")

	if readDSN := ReadDSN(cfg); readDSN != "" {
		replica, err := gorm.Open(postgres.Open(readDSN), &gorm.Config{Logger: gormLogger})
		if err != nil {
			middleware.Logger.Warn("Read replica unavailable, reads use the primary",
				slog.String("host", cfg.DBReadHost), slog.String("error", err.Error()))
		} else if err := configurePool(replica, cfg); err == nil {
			ReadDB = replica
			middleware.Logger.Info("Read replica connected", slog.String("host", cfg.DBReadHost))
		}
	}

	DB = dbInstance
	return DB, nil
}

// GetReadDB returns the replica connection, or nil when reads should use the primary.
func GetReadDB() *gorm.DB {
	return ReadDB
}

// Ping checks connectivity of the primary.
func Ping(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("database not initialized")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func configurePool(db *gorm.DB, cfg *config.Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql.DB: %w", err)
	}

	maxOpen := cfg.DBMaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	maxIdle := cfg.DBMaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	lifetime := cfg.DBConnMaxLifetimeMinutes
	if lifetime <= 0 {
		lifetime = 5
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(time.Duration(lifetime) * time.Minute)
	return nil
}
