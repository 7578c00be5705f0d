package initializers

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"azv-admin-api/pkg/appenv"
)

const defaultUpstreamURL = "http://176.126.164.86:8001"

// Config is read once at startup from the environment.
type Config struct {
	Env             appenv.Env
	Port            string
	DatabaseURL     string
	RedisURL        string
	JWTSecret       string
	SessionTTL      time.Duration
	UpstreamBaseURL string
	UpstreamTimeout time.Duration
	UpstreamRetries int
	TrustedProxies  []string
	LogLevel        slog.Level
	Media           MediaConfig
}

func LoadConfig() (Config, error) {
	cfg := Config{
		Env:             appenv.Current(),
		Port:            envOr("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        envOr("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		SessionTTL:      parseDuration(os.Getenv("SESSION_TTL"), 12*time.Hour),
		UpstreamBaseURL: envOr("UPSTREAM_BASE_URL", defaultUpstreamURL),
		UpstreamTimeout: parseDuration(os.Getenv("UPSTREAM_TIMEOUT"), 15*time.Second),
		UpstreamRetries: int(parseInt64(os.Getenv("UPSTREAM_RETRIES"), 2)),
		TrustedProxies:  splitList(os.Getenv("TRUSTED_PROXIES")),
		LogLevel:        parseLevel(os.Getenv("LOG_LEVEL")),
		Media:           LoadMediaConfig(),
	}

	var errs []error
	if cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is not set"))
	}
	if len(cfg.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be set and at least 32 characters"))
	}
	if cfg.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL))
	}
	if len(cfg.TrustedProxies) == 0 {
		cfg.TrustedProxies = []string{"127.0.0.1", "::1"}
	}
	return cfg, errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(val string) []string {
	var out []string
	for _, p := range strings.Split(val, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseDuration accepts Go durations ("90s", "12h") and bare seconds.
func parseDuration(val string, def time.Duration) time.Duration {
	val = strings.TrimSpace(val)
	if val == "" {
		return def
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

func parseLevel(val string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(val))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseBool(val string) bool {
	return strings.ToLower(strings.TrimSpace(val)) == "true"
}

func parseInt64(val string, def int64) int64 {
	if val == "" {
		return def
	}
	v, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
	if err != nil {
		return def
	}
	return v
}
