package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMemoryDefaults(t *testing.T) {
	t.Setenv("APP_STORAGE", "memory")
	t.Setenv("JWT_SECRET", "s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.Equal(t, 7, cfg.RefreshTTLDays)
	assert.Equal(t, time.Hour, cfg.TokenPurgeEvery)
	assert.False(t, cfg.MailEnabled())
	assert.False(t, cfg.MediaEnabled())
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("APP_STORAGE", "mysql")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_NAME", "cinema")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_USER")
}

func TestLoadRejectsHalfOwner(t *testing.T) {
	t.Setenv("APP_STORAGE", "memory")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("OWNER_EMAIL", "owner@example.com")
	t.Setenv("OWNER_PASSWORD", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownStorage(t *testing.T) {
	t.Setenv("APP_STORAGE", "mongo")
	t.Setenv("JWT_SECRET", "s")

	_, err := Load()
	assert.Error(t, err)
}

func TestRateLimitClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	c := LoadRateLimitConfig()
	assert.Equal(t, 1, c.Capacity)
	assert.Equal(t, 10*time.Second, c.TTL)
}

func TestCacheConfigLists(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_PATHS", "/api/movies")

	c := LoadCacheConfig()
	assert.True(t, c.Methods["GET"])
	assert.True(t, c.Methods["HEAD"])
	assert.Equal(t, []string{"/api/movies"}, c.Paths)
	assert.Equal(t, []string{"/api/bookings"}, c.FlushPaths)
}
