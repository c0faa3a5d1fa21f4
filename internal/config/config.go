// Package config loads runtime configuration from environment variables.
// Values are returned as an injected struct; nothing in the client reads the
// environment after startup.
package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Store backend names accepted by SESSION_STORE.
const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config holds all runtime configuration for the client.
type Config struct {
	APIBaseURL string

	SessionStore string // file | memory | redis | postgres
	SessionFile  string // used by the file backend
	RedisURL     string // used by the redis backend
	DatabaseURL  string // used by the postgres backend

	GeoEndpoint     string // IP geolocation service; empty disables lookup
	LocationTimeout time.Duration
	LocationMaxAge  time.Duration

	// Fixed position overrides geolocation entirely when both are set.
	FixedLat, FixedLng float64
	HasFixedPosition   bool

	DefaultRadiusKm float64
	WatchInterval   time.Duration
}

// Load reads the environment and returns a Config with defaults filled in.
func Load() *Config {
	cfg := &Config{
		APIBaseURL:      GetEnv("WORKNEARME_API_URL", "http://localhost:8080/api"),
		SessionStore:    GetEnv("SESSION_STORE", StoreFile),
		SessionFile:     GetEnv("SESSION_FILE", defaultSessionFile()),
		RedisURL:        GetEnv("REDIS_URL", "redis://localhost:6379/0"),
		DatabaseURL:     GetEnv("DATABASE_URL", ""),
		GeoEndpoint:     GetEnv("GEO_ENDPOINT", "http://ip-api.com/json"),
		LocationTimeout: time.Duration(GetEnvAsInt("LOCATION_TIMEOUT_SECONDS", 5)) * time.Second,
		LocationMaxAge:  time.Duration(GetEnvAsInt("LOCATION_MAX_AGE_SECONDS", 300)) * time.Second,
		DefaultRadiusKm: GetEnvAsFloat("DEFAULT_RADIUS_KM", 3),
		WatchInterval:   time.Duration(GetEnvAsInt("WATCH_INTERVAL_SECONDS", 300)) * time.Second,
	}

	lat, latSet := lookupFloat("WORKNEARME_LAT")
	lng, lngSet := lookupFloat("WORKNEARME_LNG")
	if latSet && lngSet {
		cfg.FixedLat, cfg.FixedLng = lat, lng
		cfg.HasFixedPosition = true
	}

	return cfg
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".worknearme-session.json"
	}
	return filepath.Join(home, ".config", "worknearme", "session.json")
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func GetEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Invalid float value for %s: %s, using default: %g", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func lookupFloat(key string) (float64, bool) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Invalid float value for %s: %s, ignoring", key, valueStr)
		return 0, false
	}
	return value, true
}
