package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures service-level configuration.
type Server struct {
	Addr       string
	ConfigPath string
	DryRun     bool

	LogFormat string
	LogLevel  string

	// EvalTimeout bounds one full activity evaluation.
	EvalTimeout time.Duration
	// CacheTTL is the default result-cache TTL for checks that enable
	// caching without setting their own.
	CacheTTL time.Duration

	Redis RedisConfig
	Kafka KafkaConfig
}

// RedisConfig configures the optional Redis-backed result cache. An empty
// URL means cache in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional Kafka result destination. Empty seeds
// disable it.
type KafkaConfig struct {
	Seeds []string
	Topic string
}

// FromEnv builds the config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:        envOr("MODSIEVE_ADDR", ":8080"),
		ConfigPath:  envOr("MODSIEVE_CONFIG", "modsieve.json"),
		DryRun:      os.Getenv("MODSIEVE_DRY_RUN") == "true",
		LogFormat:   envOr("MODSIEVE_LOG_FORMAT", "text"),
		LogLevel:    envOr("MODSIEVE_LOG_LEVEL", "info"),
		EvalTimeout: envDurationOr("MODSIEVE_EVAL_TIMEOUT", time.Minute),
		CacheTTL:    envDurationOr("MODSIEVE_CACHE_TTL", 5*time.Minute),
		Redis: RedisConfig{
			URL:          os.Getenv("MODSIEVE_REDIS_URL"),
			PoolSize:     envIntOr("MODSIEVE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("MODSIEVE_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDurationOr("MODSIEVE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("MODSIEVE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("MODSIEVE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Topic: envOr("MODSIEVE_KAFKA_TOPIC", "modsieve.results"),
		},
	}
	if seeds := os.Getenv("MODSIEVE_KAFKA_SEEDS"); seeds != "" {
		cfg.Kafka.Seeds = strings.Split(seeds, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
