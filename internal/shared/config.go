package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	SentimentBase string
	SentimentRPS  int

	EnrichWorkers int
	KeywordsPath  string
	CacheTTL      time.Duration

	StarWeight      float64
	SentimentWeight float64
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
		return def
	}
	c := Config{
		AppEnv:          env("APP_ENV", "prod"),
		HTTPAddr:        env("HTTP_ADDR", ":8080"),
		MetricsAddr:     env("METRICS_ADDR", ":9100"),
		MySQLDSN:        env("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviews?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:       env("REDIS_ADDR", "localhost:6379"),
		RedisPass:       env("REDIS_PASSWORD", ""),
		RedisDB:         atoi("REDIS_DB", 0),
		SentimentBase:   env("SENTIMENT_BASE_URL", "http://localhost:5000"),
		SentimentRPS:    atoi("SENTIMENT_RPS", 5),
		EnrichWorkers:   atoi("ENRICH_WORKERS", 8),
		KeywordsPath:    env("KEYWORDS_PATH", "config/keywords.json"),
		CacheTTL:        time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		StarWeight:      atof("STAR_WEIGHT", 0.5),
		SentimentWeight: atof("SENTIMENT_WEIGHT", 0.5),
	}
	if os.Getenv("SENTIMENT_BASE_URL") == "" {
		log.Warn().Str("default", c.SentimentBase).Msg("SENTIMENT_BASE_URL not set")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
