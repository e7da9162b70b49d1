package config

import (
	"os"
	"strings"
	"time"
)

// Config captures process-level configuration. Session and grant TTLs are
// deliberately NOT here: they are fixed security constants owned by the auth
// service, not deployment knobs.
type Config struct {
	Addr string

	// PostgresDSN is required in production; when empty the server runs on
	// in-memory stores (dev mode).
	PostgresDSN string

	Redis RedisConfig

	// KafkaBrokers enables the security audit sink when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	// CleanupInterval paces the expired-delegation sweep.
	CleanupInterval time.Duration
}

// RedisConfig holds connection settings for the guest session store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("RDB_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	topic := os.Getenv("RDB_KAFKA_AUDIT_TOPIC")
	if topic == "" {
		topic = "rdb.audit.security"
	}

	var brokers []string
	if raw := os.Getenv("RDB_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	interval := 10 * time.Minute
	if raw := os.Getenv("RDB_CLEANUP_INTERVAL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			interval = parsed
		}
	}

	return Config{
		Addr:        addr,
		PostgresDSN: os.Getenv("RDB_POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("RDB_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		KafkaBrokers:    brokers,
		KafkaTopic:      topic,
		CleanupInterval: interval,
	}
}
