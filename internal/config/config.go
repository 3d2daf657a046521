package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultJWTSecret = "your-super-secret-jwt-token-change-me"

// Config holds the whole application configuration, populated from
// environment variables (optionally loaded from .env by the binaries).
type Config struct {
	App    AppConfig
	Redis  RedisConfig
	JWT    JWTConfig
	MinIO  MinIOConfig
	Query  QueryConfig
	Shell  ShellConfig
	Worker WorkerConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type MinIOConfig struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	CoverBucket  string // public
	FileBucket   string // private
	PublicURL    string // base for cover links, defaults to the endpoint
	SignedURLTTL time.Duration
}

type QueryConfig struct {
	Backend string // memory | redis
	TTL     time.Duration
}

// ShellConfig drives the offline edge that fronts the single-page app.
type ShellConfig struct {
	OriginURL    string // empty disables the edge
	CacheVersion string
	GatewayHost  string // never intercepted
	Assets       []string
}

type WorkerConfig struct {
	Concurrency     int
	RecountSchedule string
}

func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Karwan Auliya API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", defaultJWTSecret),
			Issuer: getEnv("JWT_ISSUER", ""),
		},
		MinIO: MinIOConfig{
			Endpoint:     getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:    getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:    getEnv("MINIO_SECRET_KEY", "minioadmin"),
			UseSSL:       getEnvBool("MINIO_USE_SSL", false),
			CoverBucket:  getEnv("MINIO_COVER_BUCKET", "book-covers"),
			FileBucket:   getEnv("MINIO_FILE_BUCKET", "book-files"),
			PublicURL:    getEnv("MINIO_PUBLIC_URL", ""),
			SignedURLTTL: getEnvDuration("MINIO_SIGNED_URL_TTL", time.Hour),
		},
		Query: QueryConfig{
			Backend: getEnv("QUERY_CACHE_BACKEND", "redis"),
			TTL:     getEnvDuration("QUERY_CACHE_TTL", 5*time.Minute),
		},
		Shell: ShellConfig{
			OriginURL:    getEnv("SHELL_ORIGIN_URL", ""),
			CacheVersion: getEnv("SHELL_CACHE_VERSION", "v1"),
			GatewayHost:  getEnv("SHELL_GATEWAY_HOST", ""),
			Assets:       getEnvList("SHELL_ASSETS", []string{"/", "/manifest.json", "/favicon.ico"}),
		},
		Worker: WorkerConfig{
			Concurrency:     getEnvInt("WORKER_CONCURRENCY", 10),
			RecountSchedule: getEnv("WORKER_RECOUNT_SCHEDULE", "@every 30m"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Query.Backend != "memory" && c.Query.Backend != "redis" {
		return fmt.Errorf("QUERY_CACHE_BACKEND must be memory or redis, got %q", c.Query.Backend)
	}
	if c.MinIO.SignedURLTTL <= 0 {
		return fmt.Errorf("MINIO_SIGNED_URL_TTL must be positive")
	}

	if c.App.Environment == "production" {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.MinIO.AccessKey == "minioadmin" {
			return fmt.Errorf("MINIO_ACCESS_KEY must be set in production")
		}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
