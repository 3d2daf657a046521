package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	for _, key := range []string{"QUERY_CACHE_BACKEND", "QUERY_CACHE_TTL", "MINIO_SIGNED_URL_TTL", "WORKER_RECOUNT_SCHEDULE", "SHELL_ASSETS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Query.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Query.TTL)
	assert.Equal(t, time.Hour, cfg.MinIO.SignedURLTTL)
	assert.Equal(t, "@every 30m", cfg.Worker.RecountSchedule)
	assert.Equal(t, []string{"/", "/manifest.json", "/favicon.ico"}, cfg.Shell.Assets)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("QUERY_CACHE_BACKEND", "memory")
	t.Setenv("QUERY_CACHE_TTL", "30s")
	t.Setenv("MINIO_SIGNED_URL_TTL", "15m")
	t.Setenv("SHELL_ASSETS", "/, /app.js ,,/app.css")
	t.Setenv("WORKER_CONCURRENCY", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Query.Backend)
	assert.Equal(t, 30*time.Second, cfg.Query.TTL)
	assert.Equal(t, 15*time.Minute, cfg.MinIO.SignedURLTTL)
	assert.Equal(t, []string{"/", "/app.js", "/app.css"}, cfg.Shell.Assets)
	assert.Equal(t, 10, cfg.Worker.Concurrency)
}

func TestValidate(t *testing.T) {
	t.Setenv("QUERY_CACHE_BACKEND", "memcached")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("QUERY_CACHE_BACKEND", "redis")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "a-real-secret")
	t.Setenv("MINIO_ACCESS_KEY", "prod-key")
	_, err = Load()
	assert.NoError(t, err)
}
