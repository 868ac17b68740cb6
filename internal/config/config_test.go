package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("APP_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, "08:00", cfg.DayStart)
	assert.Equal(t, "20:00", cfg.DayEnd)
	assert.Equal(t, time.Hour, cfg.SlotLength)
	assert.Equal(t, 30*time.Minute, cfg.SlotStep)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_ProdRejectsDefaultSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsBadClockTime(t *testing.T) {
	t.Setenv("DAY_START", "8am")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RateLimitFloors(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.RateLimit.Capacity)
	assert.Equal(t, 5*time.Second, cfg.RateLimit.TTL)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Nil(t, splitList(""))
}
