package config

import (
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	DBMaxConns  int
	Migrate     bool
	JWTSecret   string
	TokenTTL    time.Duration
	Environment string
}

// Load reads a .env file when present, then the environment. An empty
// DatabaseURL selects the in-memory store (dev mode).
func Load() *Config {
	// Missing .env is fine in production; env vars win either way.
	_ = godotenv.Load()

	cpu := runtime.GOMAXPROCS(0)
	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBMaxConns:  getIntEnv("DB_MAX_CONNS", clamp(cpu*4, 4, 50)),
		Migrate:     getEnv("DB_MIGRATE", "0") == "1",
		JWTSecret:   getEnv("JWT_SECRET", ""),
		TokenTTL:    getDurationEnv("TOKEN_TTL", 24*time.Hour),
		Environment: getEnv("ENVIRONMENT", "production"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
