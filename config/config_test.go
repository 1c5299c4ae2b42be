package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8082", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 50, cfg.CrawlMaxPages)
	assert.Equal(t, 3, cfg.CrawlMaxDepth)
	assert.Equal(t, 250*time.Millisecond, cfg.CrawlDelay)
	assert.Equal(t, 15*time.Second, cfg.CrawlTimeout)
	assert.Equal(t, "SEOAuditBot/1.0", cfg.UserAgent)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CRAWL_MAX_PAGES", "5")
	t.Setenv("CRAWL_DELAY_MS", "0")
	t.Setenv("LOG_JSON", "true")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5, cfg.CrawlMaxPages)
	assert.Equal(t, time.Duration(0), cfg.CrawlDelay)
	assert.True(t, cfg.LogJSON)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("CRAWL_MAX_PAGES", "not-a-number")
	t.Setenv("LOG_JSON", "definitely")

	cfg := Load()

	assert.Equal(t, 50, cfg.CrawlMaxPages)
	assert.False(t, cfg.LogJSON)
}
