package config

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	validLogLevels  = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true, "disabled": true}
	validLogFormats = map[string]bool{"json": true, "console": true}
)

// ValidateConfig checks the configuration against the requirements of its environment. All
// problems are reported together; each one is a ValidationError.
func ValidateConfig(cfg *Config) error {
	var errs []error
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DBHost == "" {
			add("DB_HOST", "required for the postgres driver")
		}
		if cfg.DBUser == "" {
			add("DB_USER", "required for the postgres driver")
		}
		if cfg.DBName == "" {
			add("DB_NAME", "required for the postgres driver")
		}
		if cfg.Environment == Production && cfg.DBPassword == "" {
			add("DB_PASSWORD", "db_password secret is required")
		}
	case DriverSQLite:
		if cfg.Environment == Production {
			add("DB_DRIVER", "sqlite is not supported in production")
		}
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "required for the sqlite driver")
		}
	default:
		add("DB_DRIVER", fmt.Sprintf("unknown driver %q", cfg.DBDriver))
	}

	if cfg.JWTSecret == "" {
		if cfg.Environment == CI {
			add("JWT_SECRET", "environment variable is required in CI environment")
		} else {
			add("JWT_SECRET", "jwt_secret secret is required")
		}
	}
	if cfg.JWTTTL <= 0 {
		add("JWT_TTL", "must be positive")
	}
	if cfg.EmbeddingCacheTTL < time.Second {
		add("EMBEDDING_CACHE_TTL", "must be at least one second")
	}
	if cfg.RateLimitPerMinute <= 0 {
		add("RATE_LIMIT_PER_MINUTE", "must be positive")
	}
	if cfg.RedisDB < 0 {
		add("REDIS_DB", "must not be negative")
	}
	if !validLogLevels[cfg.LogLevel] {
		add("LOG_LEVEL", fmt.Sprintf("unknown level %q", cfg.LogLevel))
	}
	if !validLogFormats[cfg.LogFormat] {
		add("LOG_FORMAT", fmt.Sprintf("unknown format %q", cfg.LogFormat))
	}
	if len(cfg.CORSOrigins) == 0 {
		add("CORS_ALLOWED_ORIGINS", "at least one origin is required")
	}

	return errors.Join(errs...)
}
