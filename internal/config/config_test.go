package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "STORE_DRIVER", "CACHE_DRIVER", "CACHE_TTL_SECONDS",
		"VERIFICATION_THRESHOLD", "SETTLEMENT_MAX_ATTEMPTS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"METRICS_ENABLED", "IS_PROD", "REDIS_DB"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, DriverMySQL, cfg.StoreDriver)
	assert.Equal(t, DriverRedis, cfg.CacheDriver)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL)
	assert.Equal(t, 3, cfg.VerificationThreshold)
	assert.Equal(t, 5, cfg.SettlementMaxAttempts)
	assert.Equal(t, 5.0, cfg.RateLimitRPS)
	assert.Equal(t, 10, cfg.RateLimitBurst)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.IsProd)
	assert.Zero(t, cfg.RedisDB)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("CACHE_DRIVER", "memory")
	t.Setenv("CACHE_TTL_SECONDS", "5")
	t.Setenv("VERIFICATION_THRESHOLD", "7")
	t.Setenv("SETTLEMENT_MAX_ATTEMPTS", "not-a-number")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_NAME", "ledger")

	cfg := LoadConfig()
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, DriverMemory, cfg.CacheDriver)
	assert.Equal(t, 5*time.Second, cfg.CacheTTL)
	assert.Equal(t, 7, cfg.VerificationThreshold)
	assert.Equal(t, 5, cfg.SettlementMaxAttempts)
	assert.Equal(t, 0.5, cfg.RateLimitRPS)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, "app:pw@tcp(db:3307)/ledger?charset=utf8mb4&parseTime=True&loc=UTC", cfg.DSN())
}

func TestValidateRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	assert.ErrorIs(t, LoadConfig().Validate(), ErrMissingJWTSecret)

	t.Setenv("JWT_SECRET", "   ")
	assert.ErrorIs(t, LoadConfig().Validate(), ErrMissingJWTSecret)

	t.Setenv("JWT_SECRET", "s3cret")
	assert.NoError(t, LoadConfig().Validate())
}
