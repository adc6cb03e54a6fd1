// Package config contains everything related to configuration
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ListenAddr    string
	MySQLDSN      string
	RedisAddr     string
	CacheTTL      time.Duration
	CacheCapacity int
	RateLimit     int
	RateWindow    time.Duration
}

// Default values
const (
	defaultListenAddr    = ":8080"
	defaultCacheTTL      = 5 * time.Minute
	defaultCacheCapacity = 100
	defaultRateLimit     = 60
	defaultRateWindow    = time.Minute
)

// Load reads configuration from a .env file and environment variables.
// An empty ANALYTICS_MYSQL_DSN selects the in-memory repository; an
// empty ANALYTICS_REDIS_ADDR selects the in-process cache.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:    getEnvString("ANALYTICS_LISTEN_ADDR", defaultListenAddr),
		MySQLDSN:      getEnvString("ANALYTICS_MYSQL_DSN", ""),
		RedisAddr:     getEnvString("ANALYTICS_REDIS_ADDR", ""),
		CacheTTL:      getEnvDuration("ANALYTICS_CACHE_TTL", defaultCacheTTL),
		CacheCapacity: getEnvInt("ANALYTICS_CACHE_CAPACITY", defaultCacheCapacity),
		RateLimit:     getEnvInt("ANALYTICS_RATE_LIMIT", defaultRateLimit),
		RateWindow:    getEnvDuration("ANALYTICS_RATE_WINDOW", defaultRateWindow),
	}, nil
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "5m", or plain seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
