package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8089", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, AllocationModePartial, cfg.Portfolio.AllocationMode)
	assert.Equal(t, "@every 30s", cfg.Portfolio.ReloadSchedule)
	assert.Equal(t, 800, cfg.Chart.Width)
	assert.Equal(t, 60*time.Second, cfg.Chart.CacheTTL)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadWithCustomValues(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("PORTFOLIO_FILE", "/etc/allocation/portfolio.yaml")
	t.Setenv("ALLOCATION_MODE", "strict")
	t.Setenv("CHART_THEME", "dark")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "/etc/allocation/portfolio.yaml", cfg.Portfolio.File)
	assert.Equal(t, AllocationModeStrict, cfg.Portfolio.AllocationMode)
	assert.Equal(t, "dark", cfg.Chart.Theme)
	assert.InDelta(t, 2.5, cfg.RateLimit.RPS, 1e-9)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidateInvalidEnv(t *testing.T) {
	t.Setenv("ENV", "invalid")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateInvalidAllocationMode(t *testing.T) {
	t.Setenv("ALLOCATION_MODE", "loose")

	_, err := Load()
	assert.ErrorContains(t, err, "ALLOCATION_MODE")
}

func TestValidateChartSize(t *testing.T) {
	t.Setenv("CHART_WIDTH", "-1")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "2h")
	assert.Equal(t, 2*time.Hour, getEnvAsDuration("TEST_DURATION", "1h"))

	t.Setenv("TEST_DURATION", "soon")
	assert.Equal(t, time.Hour, getEnvAsDuration("TEST_DURATION", "1h"))
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("TEST_INT", "100")
	assert.Equal(t, 100, getEnvAsInt("TEST_INT", 50))

	os.Unsetenv("TEST_INT")
	assert.Equal(t, 50, getEnvAsInt("TEST_INT", 50))
}

func TestGetEnvAsFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "abc")
	assert.InDelta(t, 1.5, getEnvAsFloat("TEST_FLOAT", 1.5), 1e-9)
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	assert.True(t, getEnvAsBool("TEST_BOOL", false))
}
