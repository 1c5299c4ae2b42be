// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every knob the service reads from the environment. Values
// are resolved once at startup and injected; nothing in the core reads
// the process environment directly.
type Config struct {
	Port            string
	LogLevel        string
	LogJSON         bool
	DataDir         string
	PageSpeedAPIKey string

	CrawlMaxPages int
	CrawlMaxDepth int
	CrawlDelay    time.Duration
	CrawlTimeout  time.Duration
	UserAgent     string
}

// Load reads configuration, trying .env.development first for local
// development, then .env, before falling back to real env vars.
func Load() Config {
	if err := godotenv.Load(".env.development"); err != nil {
		godotenv.Load()
	}

	return Config{
		Port:            getEnv("PORT", "8082"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogJSON:         getEnvBool("LOG_JSON", false),
		DataDir:         getEnv("DATA_DIR", "./data"),
		PageSpeedAPIKey: getEnv("PAGESPEED_API_KEY", ""),

		CrawlMaxPages: getEnvInt("CRAWL_MAX_PAGES", 50),
		CrawlMaxDepth: getEnvInt("CRAWL_MAX_DEPTH", 3),
		CrawlDelay:    time.Duration(getEnvInt("CRAWL_DELAY_MS", 250)) * time.Millisecond,
		CrawlTimeout:  time.Duration(getEnvInt("CRAWL_TIMEOUT_MS", 15000)) * time.Millisecond,
		UserAgent:     getEnv("USER_AGENT", "SEOAuditBot/1.0"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
