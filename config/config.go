package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string
	JWTTTL    time.Duration

	// Gemini powers embeddings and the RAG generator
	GeminiAPIKey         string
	GeminiEmbeddingModel string
	GeminiChatModel      string
	EmbeddingCacheTTL    time.Duration

	// Spoonacular powers online mode
	SpoonacularAPIKey  string
	SpoonacularBaseURL string

	// Recipe image storage
	S3Bucket  string
	AWSRegion string

	CORSOrigins        []string
	LogLevel           string
	LogFormat          string
	RateLimitPerMinute int
	LexiconPath        string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// sensitiveKeys are only ever read from Docker secrets outside CI.
var sensitiveKeys = map[string]bool{
	"DB_PASSWORD":         true,
	"REDIS_PASSWORD":      true,
	"JWT_SECRET":          true,
	"GEMINI_API_KEY":      true,
	"SPOONACULAR_API_KEY": true,
}

// lookup resolves one configuration key.
type lookup func(key string) string

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{Environment: env}

	var err error
	switch env {
	case CI:
		err = loadCIConfig(cfg)
	case Development, Test:
		err = loadDevConfig(cfg)
	case Production:
		err = loadProdConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadCIConfig reads everything from environment variables set by the CI runner.
func loadCIConfig(cfg *Config) error {
	return fill(cfg, os.Getenv)
}

// loadDevConfig prefers Docker secrets and falls back to environment variables.
func loadDevConfig(cfg *Config) error {
	return fill(cfg, func(key string) string {
		if v := readSecret(secretName(key)); v != "" {
			return v
		}
		return os.Getenv(key)
	})
}

// loadProdConfig reads credentials from Docker secrets only.
func loadProdConfig(cfg *Config) error {
	return fill(cfg, func(key string) string {
		if v := readSecret(secretName(key)); v != "" {
			return v
		}
		if sensitiveKeys[key] {
			return ""
		}
		return os.Getenv(key)
	})
}

func fill(cfg *Config, get lookup) error {
	str := func(key, def string) string {
		if v := get(key); v != "" {
			return v
		}
		return def
	}

	defaultDriver := DriverPostgres
	if cfg.Environment == Test {
		defaultDriver = DriverSQLite
	}

	cfg.ServerPort = str("SERVER_PORT", "8080")
	cfg.ServerHost = str("SERVER_HOST", "0.0.0.0")

	cfg.DBDriver = strings.ToLower(str("DB_DRIVER", defaultDriver))
	cfg.DBHost = str("DB_HOST", "localhost")
	cfg.DBPort = str("DB_PORT", "5432")
	cfg.DBUser = get("DB_USER")
	cfg.DBPassword = get("DB_PASSWORD")
	cfg.DBName = str("DB_NAME", "chefai")
	cfg.DBSSLMode = str("DB_SSL_MODE", "disable")
	cfg.SQLitePath = str("SQLITE_PATH", "chefai.db")

	cfg.RedisHost = str("REDIS_HOST", "localhost")
	cfg.RedisPort = str("REDIS_PORT", "6379")
	cfg.RedisPassword = get("REDIS_PASSWORD")
	cfg.RedisURL = get("REDIS_URL")

	cfg.JWTSecret = get("JWT_SECRET")

	cfg.GeminiAPIKey = get("GEMINI_API_KEY")
	cfg.GeminiEmbeddingModel = str("GEMINI_EMBEDDING_MODEL", "text-embedding-004")
	cfg.GeminiChatModel = str("GEMINI_CHAT_MODEL", "gemini-1.5-flash")

	cfg.SpoonacularAPIKey = get("SPOONACULAR_API_KEY")
	cfg.SpoonacularBaseURL = strings.TrimRight(str("SPOONACULAR_BASE_URL", "https://api.spoonacular.com"), "/")

	cfg.S3Bucket = get("S3_BUCKET_NAME")
	cfg.AWSRegion = str("AWS_REGION", "us-east-1")

	cfg.CORSOrigins = splitList(str("CORS_ALLOWED_ORIGINS", "http://localhost:3000"))
	cfg.LogLevel = strings.ToLower(str("LOG_LEVEL", "info"))
	cfg.LogFormat = strings.ToLower(str("LOG_FORMAT", "json"))
	cfg.LexiconPath = get("LEXICON_PATH")

	var err error
	if cfg.RedisDB, err = intValue(get, "REDIS_DB", 0); err != nil {
		return err
	}
	if cfg.RateLimitPerMinute, err = intValue(get, "RATE_LIMIT_PER_MINUTE", 30); err != nil {
		return err
	}
	if cfg.JWTTTL, err = durationValue(get, "JWT_TTL", 24*time.Hour); err != nil {
		return err
	}
	if cfg.EmbeddingCacheTTL, err = durationValue(get, "EMBEDDING_CACHE_TTL", 24*time.Hour); err != nil {
		return err
	}
	return nil
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

// RedisAddr returns host:port for the Redis client.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func intValue(get lookup, key string, def int) (int, error) {
	raw := get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ValidationError{Field: key, Message: fmt.Sprintf("not an integer: %q", raw)}
	}
	return n, nil
}

func durationValue(get lookup, key string, def time.Duration) (time.Duration, error) {
	raw := get(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, ValidationError{Field: key, Message: fmt.Sprintf("not a duration: %q", raw)}
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// secretName maps an environment key to its Docker secret file name, e.g. DB_PASSWORD → db_password.
func secretName(key string) string {
	return strings.ToLower(key)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
