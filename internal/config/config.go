package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenAddr string

	ProxyEnabled     bool
	RateLimitEnabled bool
	ServiceURL       string
	ServiceKey       string
	UpstreamTimeout  time.Duration

	LimitWindow   time.Duration
	LimitPredict  int
	LimitSkillGap int
	LimitMetadata int
	LimitLookup   int
	LimitGlobal   int

	CacheTTLBase  time.Duration
	CacheTTLQuery time.Duration
	RedisAddr     string

	LogDBEnabled     bool
	LogRetention     time.Duration
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     string
	PostgresDatabase string
	PostgresSSLMode  string
}

func Load() *Config {
	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),

		ProxyEnabled:     getEnvBool("ML_PROXY_ENABLED", true),
		RateLimitEnabled: getEnvBool("ML_RATE_LIMIT_ENABLED", true),
		ServiceURL:       getEnv("ML_SERVICE_URL", "http://localhost:8000"),
		ServiceKey:       getEnv("ML_SERVICE_KEY", ""),
		UpstreamTimeout:  getEnvDuration("ML_UPSTREAM_TIMEOUT", 10*time.Second),

		LimitWindow:   getEnvDuration("ML_LIMIT_WINDOW", time.Minute),
		LimitPredict:  getEnvInt("ML_LIMIT_PREDICT", 6),
		LimitSkillGap: getEnvInt("ML_LIMIT_SKILL_GAP", 6),
		LimitMetadata: getEnvInt("ML_LIMIT_METADATA", 30),
		LimitLookup:   getEnvInt("ML_LIMIT_LOOKUP", 30),
		LimitGlobal:   getEnvInt("ML_LIMIT_GLOBAL", 60),

		CacheTTLBase:  getEnvDuration("CACHE_TTL_BASE", time.Hour),
		CacheTTLQuery: getEnvDuration("CACHE_TTL_QUERY", 5*time.Minute),
		RedisAddr:     getEnv("REDIS_ADDR", ""),

		LogDBEnabled:     getEnvBool("LOG_DB_ENABLED", true),
		LogRetention:     getEnvDuration("LOG_RETENTION", 30*24*time.Hour),
		PostgresUser:     getEnv("POSTGRES_USER", "mlgateway"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresDatabase: getEnv("POSTGRES_DATABASE", "ml_gateway"),
		PostgresSSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
