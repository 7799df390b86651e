package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string // empty -> in-memory catalog seeded at startup
	RedisAddr   string // empty -> no cache
	RedisDB     int
	RedisPass   string
	FeedBase    string // empty -> ingestor uses the embedded seed
	FeedKey     string
	FeedRPS     int
	Workers     int
	CacheTTL    time.Duration
	SearchDelay time.Duration
	PriceMin    int64
	PriceMax    int64
	CORSOrigins []string
}

func Load() Config {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		MySQLDSN:    env("MYSQL_DSN", ""),
		RedisAddr:   env("REDIS_ADDR", ""),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		FeedBase:    env("FEED_BASE_URL", ""),
		FeedKey:     env("FEED_API_KEY", ""),
		FeedRPS:     atoi("FEED_RPS", 5),
		Workers:     atoi("INGEST_WORKERS", 8),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		SearchDelay: time.Duration(atoi("SEARCH_DELAY_MS", 0)) * time.Millisecond,
		PriceMin:    int64(atoi("DEFAULT_PRICE_MIN", 500_000)),
		PriceMax:    int64(atoi("DEFAULT_PRICE_MAX", 5_000_000)),
		CORSOrigins: splitList(env("CORS_ORIGINS", "http://localhost:5173,http://localhost:8080")),
	}
	if c.PriceMin > c.PriceMax {
		log.Warn().Int64("min", c.PriceMin).Int64("max", c.PriceMax).Msg("default price range inverted, swapping")
		c.PriceMin, c.PriceMax = c.PriceMax, c.PriceMin
	}
	if c.FeedBase != "" && c.FeedKey == "" {
		log.Warn().Msg("FEED_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
