// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultJWTSecret        = "your-secret-key-change-in-production"
	defaultJWTRefreshSecret = "your-refresh-secret-change-in-production"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"APP_ENV"`

	DBHost                        string `mapstructure:"DB_HOST"`
	DBPort                        string `mapstructure:"DB_PORT"`
	DBUser                        string `mapstructure:"DB_USER"`
	DBPassword                    string `mapstructure:"DB_PASSWORD"`
	DBName                        string `mapstructure:"DB_NAME"`
	DBSSLMode                     string `mapstructure:"DB_SSLMODE"`
	DBReadHost                    string `mapstructure:"DB_READ_HOST"`
	DBReadPort                    string `mapstructure:"DB_READ_PORT"`
	DBReadUser                    string `mapstructure:"DB_READ_USER"`
	DBReadPassword                string `mapstructure:"DB_READ_PASSWORD"`
	DBSchemaMode                  string `mapstructure:"DB_SCHEMA_MODE"`
	DBAutoMigrateAllowDestructive bool   `mapstructure:"DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE"`
	DBMaxOpenConns                int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns                int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes      int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`

	RedisURL string `mapstructure:"REDIS_URL"`

	JWTSecret           string `mapstructure:"JWT_SECRET"`
	JWTRefreshSecret    string `mapstructure:"JWT_REFRESH_SECRET"`
	JWTExpiresIn        string `mapstructure:"JWT_EXPIRES_IN"`
	JWTRefreshExpiresIn string `mapstructure:"JWT_REFRESH_EXPIRES_IN"`

	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags   string `mapstructure:"FEATURE_FLAGS"`

	TracingEnabled     bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter    string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint       string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio float64 `mapstructure:"TRACING_SAMPLE_RATIO"`

	CatalogCacheTTLSeconds int  `mapstructure:"CATALOG_CACHE_TTL_SECONDS"`
	SeedBuiltIns           bool `mapstructure:"SEED_BUILT_INS"`

	// Bootstrap admin account, ensured at startup when AdminEmail is set.
	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminUsername string `mapstructure:"ADMIN_USERNAME"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
}

// LoadConfig loads application configuration from .env, config files and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARNING: failed to parse .env: %v", err)
	}

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	viper.SetDefault("PORT", "3001")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "xhubsell")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_READ_HOST", "")
	viper.SetDefault("DB_READ_PORT", "5432")
	viper.SetDefault("DB_READ_USER", "user")
	viper.SetDefault("DB_READ_PASSWORD", "password")
	viper.SetDefault("DB_SCHEMA_MODE", "hybrid")
	viper.SetDefault("DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE", false)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_REFRESH_SECRET", defaultJWTRefreshSecret)
	viper.SetDefault("JWT_EXPIRES_IN", "15m")
	viper.SetDefault("JWT_REFRESH_EXPIRES_IN", "7d")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("FEATURE_FLAGS", "")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)
	viper.SetDefault("CATALOG_CACHE_TTL_SECONDS", 120)
	viper.SetDefault("SEED_BUILT_INS", true)
	viper.SetDefault("ADMIN_EMAIL", "")
	viper.SetDefault("ADMIN_USERNAME", "admin")
	viper.SetDefault("ADMIN_PASSWORD", "")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.DBSSLMode = strings.ToLower(strings.TrimSpace(config.DBSSLMode))
	config.DBSchemaMode = strings.ToLower(strings.TrimSpace(config.DBSchemaMode))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// IsProduction reports whether the app runs with production safeguards.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// AccessTokenTTL is the lifetime of access tokens.
func (c *Config) AccessTokenTTL() time.Duration {
	d, err := ParseDuration(c.JWTExpiresIn)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// RefreshTokenTTL is the lifetime of refresh tokens.
func (c *Config) RefreshTokenTTL() time.Duration {
	d, err := ParseDuration(c.JWTRefreshExpiresIn)
	if err != nil || d <= 0 {
		return 7 * 24 * time.Hour
	}
	return d
}

// CatalogCacheTTL is the cache lifetime of public catalog listings.
func (c *Config) CatalogCacheTTL() time.Duration {
	if c.CatalogCacheTTLSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(c.CatalogCacheTTLSeconds) * time.Second
}

// ParseDuration extends time.ParseDuration with a day unit ("7d").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q: %w", s, err)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTRefreshSecret == "" {
		return errors.New("JWT_REFRESH_SECRET is required")
	}
	if _, err := ParseDuration(c.JWTExpiresIn); c.JWTExpiresIn != "" && err != nil {
		return fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}
	if _, err := ParseDuration(c.JWTRefreshExpiresIn); c.JWTRefreshExpiresIn != "" && err != nil {
		return fmt.Errorf("JWT_REFRESH_EXPIRES_IN: %w", err)
	}
	if c.DBMaxOpenConns < 0 || c.DBMaxIdleConns < 0 || c.DBConnMaxLifetimeMinutes < 0 {
		return errors.New("DB pool settings must not be negative")
	}
	if c.TracingSampleRatio < 0 || c.TracingSampleRatio > 1 {
		return errors.New("TRACING_SAMPLE_RATIO must be between 0 and 1")
	}
	if c.AdminEmail != "" && c.AdminPassword == "" {
		return errors.New("ADMIN_PASSWORD is required when ADMIN_EMAIL is set")
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret || c.JWTRefreshSecret == defaultJWTRefreshSecret {
			return errors.New("JWT secrets must be changed from the default values in production")
		}
		if len(c.JWTSecret) < 32 || len(c.JWTRefreshSecret) < 32 {
			return errors.New("JWT secrets must be at least 32 characters in production")
		}
		if c.JWTSecret == c.JWTRefreshSecret {
			return errors.New("JWT_REFRESH_SECRET must differ from JWT_SECRET")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable TLS in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
