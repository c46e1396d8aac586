package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	HTTPAddr    string
	StoreDriver string

	RedisAddr    string
	RedisPass    string
	RedisChannel string

	KafkaBrokers []string
	KafkaTopic   string

	JWTSecret      string
	JWTIssuer      string
	JWTExpireHours int

	CORSOrigins        []string
	RateLimitPerMinute int
	RateLimitBlock     time.Duration

	SerialMaxAttempts int
	WSSendTimeout     time.Duration
	ShutdownTimeout   time.Duration

	AdminLogin    string
	AdminPassword string
}

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

func Load() AppConfig {
	return AppConfig{
		HTTPAddr:    getEnv("HTTP_ADDR", ":8000"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),

		RedisAddr:    getEnv("REDIS_ADDR", ""),
		RedisPass:    getEnv("REDIS_PASS", ""),
		RedisChannel: getEnv("REDIS_CHANNEL", "ledger_events"),

		KafkaBrokers: getEnvSlice("KAFKA_BROKERS", nil),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "ledger.events"),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTIssuer:      getEnv("JWT_ISSUER", "ledger-service"),
		JWTExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 8),

		CORSOrigins:        getEnvSlice("CORS_ORIGINS", []string{"*"}),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 300),
		RateLimitBlock:     getEnvDuration("RATE_LIMIT_BLOCK", 5*time.Minute),

		SerialMaxAttempts: getEnvInt("SERIAL_MAX_ATTEMPTS", 5),
		WSSendTimeout:     getEnvDuration("WS_SEND_TIMEOUT", 10*time.Second),
		ShutdownTimeout:   getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		AdminLogin:    getEnv("ADMIN_LOGIN", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}
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

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}
