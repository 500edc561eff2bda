package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"uptotimenews/internal/loader"
	"uptotimenews/pkg/news"

	"github.com/joho/godotenv"
)

type Config struct {
	// Endpoint is the full mediastack URL including its query.
	Endpoint    string
	HTTPTimeout time.Duration
	CommitMode  loader.CommitMode

	Port         string
	FrontendURL  string
	RedisURL     string
	RefreshRPS   float64
	RefreshBurst int
}

// Load reads a .env file when present and then the process environment.
// MEDIASTACK_URL, when set, is used verbatim; otherwise the URL is built
// from MEDIASTACK_BASE_URL, MEDIASTACK_ACCESS_KEY and MEDIASTACK_COUNTRIES.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("error loading .env file", "error", err)
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: os.Getenv("FRONTEND_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
	}

	cfg.Endpoint = os.Getenv("MEDIASTACK_URL")
	if cfg.Endpoint == "" {
		key := os.Getenv("MEDIASTACK_ACCESS_KEY")
		if key == "" {
			slog.Warn("MEDIASTACK_ACCESS_KEY environment variable is not set")
		}

		endpoint, err := news.BuildMediastackURL(
			getEnv("MEDIASTACK_BASE_URL", news.DefaultMediastackURL),
			key,
			getEnv("MEDIASTACK_COUNTRIES", "in"),
		)
		if err != nil {
			return nil, err
		}
		cfg.Endpoint = endpoint
	}

	timeout, err := time.ParseDuration(getEnv("HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	mode, err := loader.ParseCommitMode(os.Getenv("FEED_COMMIT_MODE"))
	if err != nil {
		return nil, fmt.Errorf("invalid FEED_COMMIT_MODE: %w", err)
	}
	cfg.CommitMode = mode

	rps, err := strconv.ParseFloat(getEnv("REFRESH_RPS", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_RPS: %w", err)
	}
	cfg.RefreshRPS = rps

	burst, err := strconv.Atoi(getEnv("REFRESH_BURST", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_BURST: %w", err)
	}
	cfg.RefreshBurst = burst

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
