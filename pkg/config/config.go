// Package config resolves AppConfig from defaults, an optional TOML file and
// the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const DefaultConfigFile = "tasktracker.toml"

type AppConfig struct {
	Environment string `toml:"environment"`
	Port        string `toml:"port"`

	DatabaseDriver string `toml:"database_driver"`
	DatabasePath   string `toml:"database_path"`
	DatabaseURL    string `toml:"database_url"`

	JWTSecret string        `toml:"jwt_secret"`
	TokenTTL  time.Duration `toml:"token_ttl"`

	CacheBackend string        `toml:"cache_backend"`
	CacheTTL     time.Duration `toml:"cache_ttl"`
	RedisURL     string        `toml:"redis_url"`

	RateLimitEnabled bool                       `toml:"rate_limit_enabled"`
	RateLimitConfigs map[string]RateLimitConfig `toml:"rate_limits"`

	EnforceHTTPS bool `toml:"enforce_https"`

	MetricsPort  string `toml:"metrics_port"`
	OTLPEndpoint string `toml:"otlp_endpoint"`

	LogLevel    string `toml:"log_level"`
	SQLLogLevel string `toml:"sql_log_level"`

	OverdueSchedule string `toml:"overdue_schedule"`
}

type RateLimitConfig struct {
	Requests int           `toml:"requests"`
	Window   time.Duration `toml:"window"`
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		Environment:    "development",
		Port:           "8080",
		DatabaseDriver: "sqlite",
		DatabasePath:   "tasktracker.db",
		TokenTTL:       24 * time.Hour,
		CacheBackend:   "memory",
		CacheTTL:       30 * time.Second,
		RedisURL:       "redis://localhost:6379/0",

		RateLimitEnabled: true,
		RateLimitConfigs: map[string]RateLimitConfig{
			"POST /api/register": {
				Requests: 5,
				Window:   time.Minute,
			},
			"POST /api/login": {
				Requests: 10,
				Window:   time.Minute,
			},
			"/api/todos": {
				Requests: 100,
				Window:   time.Minute,
			},
			"default": {
				Requests: 60,
				Window:   time.Minute,
			},
		},

		EnforceHTTPS:    false,
		MetricsPort:     "9091",
		LogLevel:        "info",
		SQLLogLevel:     "error",
		OverdueSchedule: "@every 1m",
	}
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads CONFIG_FILE (or tasktracker.toml when it exists) over the
// defaults and then applies environment overrides.
func Load() (*AppConfig, error) {
	cfg := GetDefaultConfig()

	path := os.Getenv("CONFIG_FILE")
	required := path != ""

	if path == "" {
		path = DefaultConfigFile
	}

	if err := loadConfigFile(cfg, path); err != nil {
		if required || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadConfigFile(cfg *AppConfig, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

func applyEnv(cfg *AppConfig, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"ENVIRONMENT":      &cfg.Environment,
		"PORT":             &cfg.Port,
		"DATABASE_DRIVER":  &cfg.DatabaseDriver,
		"DATABASE_PATH":    &cfg.DatabasePath,
		"DATABASE_URL":     &cfg.DatabaseURL,
		"JWT_SECRET":       &cfg.JWTSecret,
		"CACHE_BACKEND":    &cfg.CacheBackend,
		"REDIS_URL":        &cfg.RedisURL,
		"METRICS_PORT":     &cfg.MetricsPort,
		"OTLP_ENDPOINT":    &cfg.OTLPEndpoint,
		"LOG_LEVEL":        &cfg.LogLevel,
		"SQL_LOG_LEVEL":    &cfg.SQLLogLevel,
		"OVERDUE_SCHEDULE": &cfg.OverdueSchedule,
	}

	for key, target := range strs {
		if value, ok := lookup(key); ok && value != "" {
			*target = value
		}
	}

	durations := map[string]*time.Duration{
		"TOKEN_TTL": &cfg.TokenTTL,
		"CACHE_TTL": &cfg.CacheTTL,
	}

	for key, target := range durations {
		if value, ok := lookup(key); ok && value != "" {
			parsed, err := time.ParseDuration(value)

			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}

			*target = parsed
		}
	}

	bools := map[string]*bool{
		"RATE_LIMIT_ENABLED": &cfg.RateLimitEnabled,
		"ENFORCE_HTTPS":      &cfg.EnforceHTTPS,
	}

	for key, target := range bools {
		if value, ok := lookup(key); ok && value != "" {
			parsed, err := strconv.ParseBool(value)

			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}

			*target = parsed
		}
	}

	if mode, ok := lookup("GIN_MODE"); ok && mode == "release" {
		cfg.Environment = "production"
		cfg.EnforceHTTPS = true
	}

	return nil
}

func (c *AppConfig) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("database_url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database_driver %q", c.DatabaseDriver)
	}

	switch c.CacheBackend {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("unknown cache_backend %q", c.CacheBackend)
	}

	if c.IsProduction() && c.JWTSecret == "" {
		return errors.New("jwt_secret is required in production")
	}

	if strings.TrimSpace(c.Port) == "" {
		return errors.New("port must not be empty")
	}

	return nil
}
