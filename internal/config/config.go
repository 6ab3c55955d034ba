// Package config loads the backend configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP server
	Port        string
	GinMode     string
	LogFormat   string
	EnablePprof bool

	// Database
	DBPath string

	// Sessions
	JWTSecret   string
	JWTLifetime time.Duration

	// Allowed origins. CORSAllowOrigins is a space separated list of
	// origins, WSAllowOrigins a space separated list of glob patterns.
	CORSAllowOrigins string
	WSAllowOrigins   string
}

// Load reads the configuration from a .env file, if present, and from the
// environment. Environment variables take precedence over the .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		GinMode:          getEnv("GIN_MODE", "release"),
		LogFormat:        getEnv("LOG_FORMAT", ""),
		EnablePprof:      getEnvBool("ENABLE_PPROF", false),
		DBPath:           getEnv("DB_PATH", "data/halfsies.db"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTLifetime:      getEnvDuration("JWT_LIFETIME", 24*time.Hour),
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", ""),
		WSAllowOrigins:   getEnv("WS_ALLOW_ORIGINS", "*"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid port %q: must be a number between 1 and 65535", cfg.Port)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
