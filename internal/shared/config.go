package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv          string
	HTTPAddr        string
	MetricsAddr     string
	ModerationDSN   string // empty = in-memory store
	RedisAddr       string
	RedisDB         int
	RedisPass       string
	HostawayBase    string
	HostawayAccount string
	HostawayKey     string
	CacheTTL        time.Duration
	AveragePolicy   string
	SessionSecret   string
	DashboardUser   string
	DashboardPass   string
}

func Load() Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:          env("APP_ENV", "prod"),
		HTTPAddr:        env("HTTP_ADDR", ":8080"),
		MetricsAddr:     env("METRICS_ADDR", ":9100"),
		ModerationDSN:   env("MODERATION_DSN", ""),
		RedisAddr:       env("REDIS_ADDR", ""),
		RedisPass:       env("REDIS_PASSWORD", ""),
		RedisDB:         atoi("REDIS_DB", 0),
		HostawayBase:    env("HOSTAWAY_BASE_URL", "https://api.hostaway.com/v1"),
		HostawayAccount: env("HOSTAWAY_ACCOUNT_ID", ""),
		HostawayKey:     env("HOSTAWAY_API_KEY", ""),
		CacheTTL:        time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		AveragePolicy:   env("AVERAGE_POLICY", "excludeNone"),
		SessionSecret:   env("SESSION_SECRET", "dev-insecure-secret"),
		DashboardUser:   env("DASHBOARD_USER", "demo"),
		DashboardPass:   env("DASHBOARD_PASSWORD", "demo"),
	}
	if c.HostawayKey == "" {
		log.Warn().Msg("HOSTAWAY_API_KEY is empty; serving the embedded sandbox feed")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
