package configs

import (
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "DB_DRIVER", "SERVER_PORT", "JWT_ACCESS_TTL", "LAUNCHER_CACHE_BACKEND", "LAUNCHER_HTTP_TIMEOUT", "OTEL_ENABLED")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, "sqlite", cfg.Launcher.CacheBackend)
	assert.Equal(t, 10*time.Second, cfg.Launcher.HTTPTimeout)
	assert.True(t, cfg.Telemetry.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://localhost/feeds")
	t.Setenv("LAUNCHER_CACHE_BACKEND", "redis")
	t.Setenv("ANNOUNCE_TO", "a@example.com,b@example.com")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/feeds", cfg.Database.DSN)
	assert.Equal(t, "redis", cfg.Launcher.CacheBackend)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Email.AnnounceTo)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsUnknownCacheBackend(t *testing.T) {
	unsetEnv(t, "DB_DRIVER")
	t.Setenv("LAUNCHER_CACHE_BACKEND", "localstorage")
	_, err := Load()
	require.Error(t, err)
}

func TestValidateServer(t *testing.T) {
	cfg := &Config{}
	err := cfg.ValidateServer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "ADMIN_PASSWORD_HASH")

	cfg.JWT.Secret = "s"
	cfg.Admin.PasswordHash = "$2a$10$hash"
	require.NoError(t, cfg.ValidateServer())
}

func TestNewLogger(t *testing.T) {
	l := NewLogger(LogConfig{Level: "debug", Format: "text"})
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	_, isText := l.Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)

	l = NewLogger(LogConfig{Level: "nonsense", Format: "json"})
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	_, isJSON := l.Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)
}
