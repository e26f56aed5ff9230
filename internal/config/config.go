package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration
	DatabaseURL             string
	DBMaxConns              int32
	DBMinConns              int32
	JWTSecret               string
	JWTAccessTTL            time.Duration
	JWTRefreshTTL           time.Duration
	CORSOrigins             []string
	RateLimitRPM            int
	AuthRateLimitRPM        int
	UsersFile               string
	KafkaBrokers            []string
	KafkaTopic              string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 15*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),
		DatabaseURL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:              getInt32("DB_MAX_CONNS", 10),
		DBMinConns:              getInt32("DB_MIN_CONNS", 2),
		JWTSecret:               strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTAccessTTL:            getDuration("JWT_ACCESS_TTL", 15*time.Minute),
		JWTRefreshTTL:           getDuration("JWT_REFRESH_TTL", 168*time.Hour),
		CORSOrigins:             splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:            getInt("RATE_LIMIT_RPM", 100),
		AuthRateLimitRPM:        getInt("AUTH_RATE_LIMIT_RPM", 10),
		UsersFile:               getEnv("USERS_FILE", "./users.json"),
		KafkaBrokers:            splitCSV(strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))),
		KafkaTopic:              getEnv("KAFKA_TOPIC", "task-events"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be positive")
	}

	if c.JWTRefreshTTL <= c.JWTAccessTTL {
		return fmt.Errorf("JWT_REFRESH_TTL must be longer than JWT_ACCESS_TTL")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.DBMaxConns < c.DBMinConns {
		return fmt.Errorf("DB_MAX_CONNS cannot be smaller than DB_MIN_CONNS")
	}

	if strings.TrimSpace(c.UsersFile) == "" {
		return fmt.Errorf("USERS_FILE cannot be empty")
	}

	return nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getInt32(key string, fallback int32) int32 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return fallback
	}

	return int32(v)
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
