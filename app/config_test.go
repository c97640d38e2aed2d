package app

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazmulhossain17/niyenin-sub000/internal/nexus"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("AUTH_SYMMETRIC_KEY", testKey)

	cfg, err := LoadConfig(nexus.WithOnlyEnvironment())

	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.AppHost)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 5*time.Minute, cfg.TreeCacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"admin", "super_admin"}, cfg.Auth.ElevatedRoles)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, "5432", cfg.DB.Port)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("AUTH_SYMMETRIC_KEY", testKey)
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_ELEVATED_ROLES", "catalog_manager")
	t.Setenv("CATEGORY_TREE_CACHE_TTL", "30s")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "cache:6379")

	cfg, err := LoadConfig(nexus.WithOnlyEnvironment())

	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"catalog_manager"}, cfg.Auth.ElevatedRoles)
	assert.Equal(t, 30*time.Second, cfg.TreeCacheTTL)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "cache:6379", cfg.Cache.Redis.Addr)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("short key", func(t *testing.T) {
		t.Setenv("AUTH_SYMMETRIC_KEY", "short")

		_, err := LoadConfig(nexus.WithOnlyEnvironment())

		var cfgErr *nexus.ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, nexus.ErrCodeValidation, cfgErr.Code)
	})

	t.Run("unknown cache backend", func(t *testing.T) {
		t.Setenv("AUTH_SYMMETRIC_KEY", testKey)
		t.Setenv("CACHE_BACKEND", "memcached")

		_, err := LoadConfig(nexus.WithOnlyEnvironment())
		assert.Error(t, err)
	})
}
