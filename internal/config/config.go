// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, the process
// exits.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
)

// Config holds all runtime configuration for the curation service.
type Config struct {
	Port             string
	GRPCPort         string
	DatabaseURL      string
	RedisURL         string
	EnrichInterval   string // cron spec, e.g. "@every 6h"
	ValidateInterval string
	EnrichBatchSize  int
	CrawlConcurrency int     // 1 = sequential
	CrawlHostRPS     float64 // 0 = no per-host limit
	CrawlUserAgent   string
	JobSecret        string // empty = job routes open
	RunOnStart       bool
	LogLevel         slog.Level
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	enrichSpec, err := cronSpec("ENRICH_INTERVAL", "@every 6h")
	if err != nil {
		return nil, err
	}
	validateSpec, err := cronSpec("VALIDATE_INTERVAL", "@every 12h")
	if err != nil {
		return nil, err
	}

	batch, err := intVar("ENRICH_BATCH_SIZE", 60, 1, 1000)
	if err != nil {
		return nil, err
	}
	concurrency, err := intVar("CRAWL_CONCURRENCY", 1, 1, 10)
	if err != nil {
		return nil, err
	}

	rps := 1.0
	if s := os.Getenv("CRAWL_HOST_RPS"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("CRAWL_HOST_RPS must be a non-negative number, got %q", s)
		}
		rps = v
	}

	runOnStart := true
	if s := os.Getenv("RUN_ON_START"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("RUN_ON_START must be a boolean, got %q", s)
		}
		runOnStart = v
	}

	level := slog.LevelInfo
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
			return nil, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", s)
		}
	}

	return &Config{
		Port:             envOr("CURATION_PORT", "8083"),
		GRPCPort:         envOr("GRPC_PORT", "9093"),
		DatabaseURL:      dbURL,
		RedisURL:         redisURL,
		EnrichInterval:   enrichSpec,
		ValidateInterval: validateSpec,
		EnrichBatchSize:  batch,
		CrawlConcurrency: concurrency,
		CrawlHostRPS:     rps,
		CrawlUserAgent:   os.Getenv("CRAWL_USER_AGENT"),
		JobSecret:        os.Getenv("JOB_SECRET"),
		RunOnStart:       runOnStart,
		LogLevel:         level,
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intVar(key string, fallback, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("%s must be an integer in [%d, %d], got %q", key, lo, hi, s)
	}
	return v, nil
}

// cronSpec validates the spec with the same parser the scheduler uses.
func cronSpec(key, fallback string) (string, error) {
	spec := envOr(key, fallback)
	if _, err := cron.ParseStandard(spec); err != nil {
		return "", fmt.Errorf("%s is not a valid cron spec %q: %w", key, spec, err)
	}
	return spec, nil
}
