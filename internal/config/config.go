package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config aggregates application settings that may be sourced from a .env file or environment variables.
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Security  SecurityConfig  `mapstructure:"security"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port        int    `mapstructure:"port"`
	Prefix      string `mapstructure:"prefix"`
	ProjectName string `mapstructure:"project_name"`
}

// DatabaseConfig contains connection and pool options.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`

	PoolSize    int           `mapstructure:"pool_size"`
	MaxOverflow int           `mapstructure:"max_overflow"`
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`
	PoolRecycle time.Duration `mapstructure:"pool_recycle"`
	LogSQL      bool          `mapstructure:"log_sql"`
}

// AuthConfig contains token signing and password hashing options.
type AuthConfig struct {
	SecretKey                string `mapstructure:"secret_key"`
	Algorithm                string `mapstructure:"algorithm"`
	AccessTokenExpireMinutes int    `mapstructure:"access_token_expire_minutes"`
	BcryptCost               int    `mapstructure:"bcrypt_cost"`
}

// AccessTokenTTL converts the configured lifetime into a duration.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenExpireMinutes) * time.Minute
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
}

// SecurityConfig lists Host header values the API answers to. "*" allows any host.
type SecurityConfig struct {
	AllowedHosts []string `mapstructure:"allowed_hosts"`
}

// RateLimitConfig caps requests per caller per minute. Zero disables the limiter.
type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
}

// RedisConfig 包含 Redis 连接配置。Host 为空时使用进程内限流。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns host:port, or an empty string when redis is not configured.
func (r RedisConfig) Addr() string {
	if strings.TrimSpace(r.Host) == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// DSN returns the configured connection string, or builds a lib/pq compatible one.
func (d DatabaseConfig) DSN() string {
	if strings.TrimSpace(d.URL) != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Load reads configuration from an optional .env file and environment variables (with defaults).
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadAdmin reads the same sources as Load but only validates the settings operator
// commands use (database and password hashing), so SECRET_KEY is not required.
func LoadAdmin() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := validateDatabase(cfg.Database); err != nil {
		return nil, err
	}
	if err := validateBcryptCost(cfg.Auth.BcryptCost); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func read() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8000)
	v.SetDefault("api.prefix", "/api/v1")
	v.SetDefault("api.project_name", "Job Tracker API")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "jobtrack")
	v.SetDefault("database.user", "jobtrack")
	v.SetDefault("database.password", "jobtrack")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.pool_size", 5)
	v.SetDefault("database.max_overflow", 10)
	v.SetDefault("database.pool_timeout", 30*time.Second)
	v.SetDefault("database.pool_recycle", 30*time.Minute)
	v.SetDefault("database.log_sql", false)
	v.SetDefault("auth.algorithm", "HS256")
	v.SetDefault("auth.access_token_expire_minutes", 30)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("cors.origins", []string{"http://localhost:3000", "http://localhost:8000"})
	v.SetDefault("security.allowed_hosts", []string{"localhost", "127.0.0.1"})
	v.SetDefault("rate_limit.per_minute", 60)
	v.SetDefault("redis.port", 6379)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("metrics.enabled", true)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                         "API_PORT",
		"api.prefix":                       "API_V1_STR",
		"api.project_name":                 "PROJECT_NAME",
		"database.driver":                  "DATABASE_DRIVER",
		"database.url":                     "DATABASE_URL",
		"database.host":                    "DATABASE_HOST",
		"database.port":                    "DATABASE_PORT",
		"database.name":                    "POSTGRES_DB",
		"database.user":                    "POSTGRES_USER",
		"database.password":                "POSTGRES_PASSWORD",
		"database.sslmode":                 "DATABASE_SSLMODE",
		"database.pool_size":               "DATABASE_POOL_SIZE",
		"database.max_overflow":            "DATABASE_MAX_OVERFLOW",
		"database.pool_timeout":            "DATABASE_POOL_TIMEOUT",
		"database.pool_recycle":            "DATABASE_POOL_RECYCLE",
		"database.log_sql":                 "SQL_ECHO",
		"auth.secret_key":                  "SECRET_KEY",
		"auth.algorithm":                   "ALGORITHM",
		"auth.access_token_expire_minutes": "ACCESS_TOKEN_EXPIRE_MINUTES",
		"auth.bcrypt_cost":                 "BCRYPT_COST",
		"cors.origins":                     "CORS_ORIGINS",
		"security.allowed_hosts":           "ALLOWED_HOSTS",
		"rate_limit.per_minute":            "RATE_LIMIT_PER_MINUTE",
		"redis.host":                       "REDIS_HOST",
		"redis.port":                       "REDIS_PORT",
		"log.level":                        "LOG_LEVEL",
		"log.format":                       "LOG_FORMAT",
		"metrics.enabled":                  "METRICS_ENABLED",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if !strings.HasPrefix(cfg.API.Prefix, "/") {
		return errors.New("api prefix must start with /")
	}
	if err := validateDatabase(cfg.Database); err != nil {
		return err
	}
	if err := validateBcryptCost(cfg.Auth.BcryptCost); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Auth.SecretKey) == "" {
		return errors.New("secret key is required")
	}
	switch cfg.Auth.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported signing algorithm %q", cfg.Auth.Algorithm)
	}
	if cfg.Auth.AccessTokenExpireMinutes <= 0 {
		return errors.New("access token lifetime must be positive")
	}
	if cfg.RateLimit.PerMinute < 0 {
		return errors.New("rate limit must not be negative")
	}
	if cfg.Redis.Host != "" && cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}
	return nil
}

func validateDatabase(db DatabaseConfig) error {
	switch db.Driver {
	case "postgres":
		if strings.TrimSpace(db.URL) == "" {
			if db.Host == "" {
				return errors.New("database host is required")
			}
			if db.Port <= 0 {
				return errors.New("database port must be positive")
			}
			if db.Name == "" {
				return errors.New("database name is required")
			}
			if db.User == "" {
				return errors.New("database user is required")
			}
		}
	case "sqlite":
		if strings.TrimSpace(db.URL) == "" {
			return errors.New("database url is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", db.Driver)
	}
	if db.PoolSize <= 0 {
		return errors.New("database pool size must be positive")
	}
	if db.MaxOverflow < 0 {
		return errors.New("database max overflow must not be negative")
	}
	if db.PoolTimeout <= 0 {
		return errors.New("database pool timeout must be positive")
	}
	return nil
}

func validateBcryptCost(cost int) error {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}
