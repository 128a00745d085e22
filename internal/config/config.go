package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-super-secret-key-change-in-production"

// Stock guard modes for movement creation.
const (
	GuardNone  = "none"
	GuardRow   = "row"
	GuardRedis = "redis"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port int    `mapstructure:"PORT"`
	Env  string `mapstructure:"APP_ENV"` // development | production

	// Database
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	DBTimeZone     string `mapstructure:"DB_TIMEZONE"`
	DBMaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBLogLevel     string `mapstructure:"DB_LOG_LEVEL"`

	// Redis (empty disables it)
	RedisURL string `mapstructure:"REDIS_URL"`

	// Auth
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`

	// Stock movements
	StockGuard   string        `mapstructure:"STOCK_GUARD"`
	StockLockTTL time.Duration `mapstructure:"STOCK_LOCK_TTL"`

	// Logging
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"` // console | json

	// First operator created on boot when no admin exists
	BootstrapAdminEmail    string `mapstructure:"BOOTSTRAP_ADMIN_EMAIL"`
	BootstrapAdminPassword string `mapstructure:"BOOTSTRAP_ADMIN_PASSWORD"`
	BootstrapAdminName     string `mapstructure:"BOOTSTRAP_ADMIN_NAME"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	// Optional .env file for local development
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.StockGuard = strings.ToLower(strings.TrimSpace(cfg.StockGuard))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 3000)
	v.SetDefault("APP_ENV", "development")

	// Every key needs a default (even empty) so Unmarshal sees env overrides.
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "stock_ledger")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_LOG_LEVEL", "warn")

	v.SetDefault("REDIS_URL", "")

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRATION_HOURS", 24)

	v.SetDefault("STOCK_GUARD", GuardRow)
	v.SetDefault("STOCK_LOCK_TTL", "5s")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("BOOTSTRAP_ADMIN_EMAIL", "")
	v.SetDefault("BOOTSTRAP_ADMIN_PASSWORD", "")
	v.SetDefault("BOOTSTRAP_ADMIN_NAME", "Administrator")
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.StockGuard {
	case GuardNone, GuardRow:
	case GuardRedis:
		if c.RedisURL == "" {
			return errors.New("config: STOCK_GUARD=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("config: unknown STOCK_GUARD %q", c.StockGuard)
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("config: JWT_SECRET must be set in production")
	}
	if c.JWTExpirationHours <= 0 {
		return errors.New("config: JWT_EXPIRATION_HOURS must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DSN returns DATABASE_URL, or a key/value DSN built from the DB_* parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode, c.DBTimeZone,
	)
}
