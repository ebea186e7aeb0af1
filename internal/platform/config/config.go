package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr string

	// PostgresURL enables the SQL-backed stores when set; the engine runs on
	// in-memory stores otherwise.
	PostgresURL string

	// RedisURL enables the TTL cache for sanction-screening results.
	RedisURL string

	// KafkaBrokers enables the audit event publisher when non-empty.
	KafkaBrokers  []string
	AuditTopic    string
	AuditBuffer   int
	ScreeningTTL  time.Duration
	RenewalWindow int // default lookahead in days for the renewals-due report
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:          getEnv("REGULA_ADDR", ":8080"),
		PostgresURL:   os.Getenv("REGULA_POSTGRES_URL"),
		RedisURL:      os.Getenv("REGULA_REDIS_URL"),
		AuditTopic:    getEnv("REGULA_AUDIT_TOPIC", "regula.audit.events"),
		AuditBuffer:   getEnvInt("REGULA_AUDIT_BUFFER", 256),
		ScreeningTTL:  getEnvDuration("REGULA_SCREENING_TTL", 24*time.Hour),
		RenewalWindow: getEnvInt("REGULA_RENEWAL_WINDOW_DAYS", 90),
	}
	if brokers := os.Getenv("REGULA_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
