package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Loader retry policy
	MaxRetries int
	RetryDelay time.Duration

	// Page cache
	MaxCacheSize int
	PreloadRange int
	KeepRange    int

	// Background preload fan-out
	PreloadWorkers int

	// Source resolution
	FetchTimeout   time.Duration
	MaxUploadBytes int64

	// Pagination of formats without native pages
	PageWords int
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8070"),

		APIKey: os.Getenv("DOCVIEW_API_KEY"),

		MaxRetries: envInt("MAX_RETRIES", 3),
		RetryDelay: envDuration("RETRY_DELAY", 500*time.Millisecond),

		MaxCacheSize: envInt("MAX_CACHE_SIZE", 10),
		PreloadRange: envInt("PRELOAD_RANGE", 2),
		KeepRange:    envInt("KEEP_RANGE", 5),

		PreloadWorkers: envInt("PRELOAD_WORKERS", 4),

		FetchTimeout:   envDuration("FETCH_TIMEOUT", 30*time.Second),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		PageWords: envInt("PAGE_WORDS", 300),
	}

	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	if cfg.MaxCacheSize <= 0 {
		cfg.MaxCacheSize = 10
	}
	if cfg.PreloadRange < 0 {
		cfg.PreloadRange = 2
	}
	if cfg.KeepRange <= 0 {
		cfg.KeepRange = 5
	}
	if cfg.PreloadWorkers <= 0 {
		cfg.PreloadWorkers = 4
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.PageWords <= 0 {
		cfg.PageWords = 300
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCVIEW_API_KEY is required")
	}
	// A cleanup pass must never drop a page the next preload pass is about
	// to fetch back, so the keep window has to cover the preload window.
	if c.KeepRange < c.PreloadRange {
		return fmt.Errorf("KEEP_RANGE (%d) must be >= PRELOAD_RANGE (%d)", c.KeepRange, c.PreloadRange)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
