package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Ensure clean env for this test.
	os.Clearenv()

	cfg := Load()
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, "please-change-this-default-token", cfg.APIToken)
	require.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	require.Empty(t, cfg.AllowedIPs)
	require.Equal(t, int64(1048576), cfg.MaxContentLength)
	require.Equal(t, 50000, cfg.MaxNoteLength)
	require.Equal(t, 60, cfg.RateLimitRead)
	require.Equal(t, 30, cfg.RateLimitWrite)
	require.Equal(t, 20, cfg.RateLimitRename)
	require.Equal(t, 10, cfg.RateLimitDelete)
	require.Equal(t, 200, cfg.RateLimitHour)
	require.Equal(t, 1000, cfg.RateLimitDay)
	require.Equal(t, "memory", cfg.StorageBackend)
	require.Equal(t, "notes.json", cfg.NotesFile)
	require.Equal(t, "", cfg.DatabaseURL)
	require.Equal(t, 20, cfg.MaxOpenConns)
	require.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_OverridesAndInvalidValues(t *testing.T) {
	t.Cleanup(os.Clearenv)

	t.Run("valid overrides", func(t *testing.T) {
		os.Setenv("HTTP_ADDR", ":9999")
		os.Setenv("API_TOKEN", "s3cret")
		os.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
		os.Setenv("ALLOWED_IPS", "10.0.0.1, 10.0.0.2")
		os.Setenv("MAX_NOTE_LENGTH", "100")
		os.Setenv("RATE_LIMIT_READ", "5")
		os.Setenv("STORAGE_BACKEND", "postgres")
		os.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/db?sslmode=disable")
		os.Setenv("DB_CONN_MAX_LIFETIME", "1m")

		cfg := Load()
		require.Equal(t, ":9999", cfg.HTTPAddr)
		require.Equal(t, "s3cret", cfg.APIToken)
		require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
		require.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.AllowedIPs)
		require.Equal(t, 100, cfg.MaxNoteLength)
		require.Equal(t, 5, cfg.RateLimitRead)
		require.Equal(t, "postgres", cfg.StorageBackend)
		require.Equal(t, "postgres://u:p@localhost:5432/db?sslmode=disable", cfg.DatabaseURL)
		require.Equal(t, time.Minute, cfg.ConnMaxLifetime)
	})

	t.Run("invalid numbers fall back to defaults", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("MAX_NOTE_LENGTH", "abc")
		os.Setenv("MAX_CONTENT_LENGTH", "huge")
		os.Setenv("RATE_LIMIT_PER_HOUR", "xyz")
		os.Setenv("DB_CONN_MAX_LIFETIME", "bad")

		cfg := Load()
		require.Equal(t, 50000, cfg.MaxNoteLength)
		require.Equal(t, int64(1048576), cfg.MaxContentLength)
		require.Equal(t, 200, cfg.RateLimitHour)
		require.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
	})

	t.Run("blank-only ip list keeps the filter off", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("ALLOWED_IPS", " , ,")

		cfg := Load()
		require.Empty(t, cfg.AllowedIPs)
	})
}
