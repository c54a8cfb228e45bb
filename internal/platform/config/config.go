package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	PostgresURL string
	Redis       RedisConfig
	Kafka       KafkaConfig

	// TemplateCacheTTL bounds how stale a cached default template may be.
	TemplateCacheTTL time.Duration
	// AutosaveDebounce is the quiet period before a wizard draft is
	// persisted after a form change.
	AutosaveDebounce time.Duration
}

// RedisConfig holds go-redis connection settings. An empty URL disables the
// template cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds audit publishing settings. Empty brokers disable the
// Kafka sink and audit events stay in-process.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("NESTLY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	auditTopic := os.Getenv("NESTLY_AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "nestly.agreement.audit"
	}

	var brokers []string
	if raw := os.Getenv("NESTLY_KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return Server{
		Addr:        addr,
		PostgresURL: os.Getenv("NESTLY_POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("NESTLY_REDIS_URL"),
			PoolSize:     envInt("NESTLY_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("NESTLY_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("NESTLY_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("NESTLY_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("NESTLY_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    brokers,
			AuditTopic: auditTopic,
		},
		TemplateCacheTTL: envDuration("NESTLY_TEMPLATE_CACHE_TTL", 5*time.Minute),
		AutosaveDebounce: envDuration("NESTLY_AUTOSAVE_DEBOUNCE", 800*time.Millisecond),
	}
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return v
}
