package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv    string
	Port      string
	AdminPass string

	// DatabaseURL enables the durable request log when set; the log stays
	// in memory otherwise.
	DatabaseURL string
	GeoIPDBPath string

	NoteGPTBaseURL string
	BrandSuffix    string
	DefaultLocale  string

	DailyLimit        int
	MaxConcurrentJobs int

	// SettleDelay is a blind wait between initiation and the script fetch;
	// the backend exposes no readiness signal, so the value is a guess and
	// deliberately a single knob.
	SettleDelay  time.Duration
	PollInterval time.Duration
	RenderBudget time.Duration
	JobRetention time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// BurstLimit caps requests per client IP per minute across the whole
	// API; zero disables the limiter.
	BurstLimit     int
	AllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		AdminPass:         os.Getenv("ADMIN_PASS"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		GeoIPDBPath:       os.Getenv("GEOIP_DB_PATH"),
		NoteGPTBaseURL:    getEnv("NOTEGPT_BASE_URL", "https://notegpt.io/api/v2"),
		BrandSuffix:       os.Getenv("BRAND_SUFFIX"),
		DefaultLocale:     getEnv("DEFAULT_LOCALE", "en"),
		DailyLimit:        getEnvInt("DAILY_LIMIT", 3),
		MaxConcurrentJobs: getEnvInt("MAX_CONCURRENT_JOBS", 8),
		SettleDelay:       time.Second * time.Duration(getEnvInt("SETTLE_DELAY_SECONDS", 7)),
		PollInterval:      time.Second * time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 10)),
		RenderBudget:      time.Second * time.Duration(getEnvInt("RENDER_BUDGET_SECONDS", 300)),
		JobRetention:      time.Minute * time.Duration(getEnvInt("JOB_RETENTION_MINUTES", 60)),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		BurstLimit:        getEnvInt("BURST_LIMIT_PER_MINUTE", 60),
	}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	if cfg.AdminPass == "" {
		return nil, fmt.Errorf("ADMIN_PASS is required")
	}
	if cfg.DailyLimit < 1 {
		return nil, fmt.Errorf("DAILY_LIMIT must be at least 1")
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL_SECONDS must be positive")
	}
	if cfg.RenderBudget <= 0 {
		return nil, fmt.Errorf("RENDER_BUDGET_SECONDS must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
