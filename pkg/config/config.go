package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Allocation modes accepted by ALLOCATION_MODE
const (
	AllocationModePartial = "partial"
	AllocationModeStrict  = "strict"
)

// Config holds all configuration for the dashboard service
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Portfolio source
	Portfolio PortfolioConfig

	// Chart rendering
	Chart ChartConfig

	// Redis (optional chart cache)
	Redis RedisConfig

	// Rate limiting on the HTTP API
	RateLimit RateLimitConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// PortfolioConfig describes where instruments come from and how they are validated
type PortfolioConfig struct {
	File           string // empty means the embedded sample portfolio
	AllocationMode string // partial | strict
	ReloadSchedule string // cron expression, empty disables reloading
}

// ChartConfig holds rendering-layer styling for the PNG charts
type ChartConfig struct {
	Width    int
	Height   int
	Theme    string
	CacheTTL time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// RateLimitConfig configures the token bucket shared by all API clients
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only function that calls os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Portfolio: PortfolioConfig{
			File:           getEnv("PORTFOLIO_FILE", ""),
			AllocationMode: getEnv("ALLOCATION_MODE", AllocationModePartial),
			ReloadSchedule: getEnv("RELOAD_SCHEDULE", "@every 30s"),
		},

		Chart: ChartConfig{
			Width:    getEnvAsInt("CHART_WIDTH", 800),
			Height:   getEnvAsInt("CHART_HEIGHT", 600),
			Theme:    getEnv("CHART_THEME", "light"),
			CacheTTL: getEnvAsDuration("CHART_CACHE_TTL", "60s"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		RateLimit: RateLimitConfig{
			RPS:   getEnvAsFloat("RATE_LIMIT_RPS", 20),
			Burst: getEnvAsInt("RATE_LIMIT_BURST", 40),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks enumerations and ranges
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Portfolio.AllocationMode != AllocationModePartial && c.Portfolio.AllocationMode != AllocationModeStrict {
		return fmt.Errorf("ALLOCATION_MODE must be one of: %s, %s", AllocationModePartial, AllocationModeStrict)
	}

	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("CHART_WIDTH and CHART_HEIGHT must be positive")
	}

	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile loads the first .env found next to the working directory or the binary
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
