package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	ServerPort string

	// Настройки кэша дашборда
	DashboardCacheTTL time.Duration
	StaleWindow       time.Duration
	StaticCacheTTL    time.Duration

	// Таймаут для необязательных выборок (фаза 4)
	OptionalFetchTimeout time.Duration

	// Лимит запросов к дашборду (запросов в минуту)
	RateLimitPerMinute int
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "soroban"),
		JWTSecret:  getEnv("JWT_SECRET", "secret"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		DashboardCacheTTL:    time.Duration(getEnvInt("DASHBOARD_CACHE_TTL_SECONDS", 90)) * time.Second,
		StaleWindow:          time.Duration(getEnvInt("DASHBOARD_STALE_WINDOW_SECONDS", 600)) * time.Second,
		StaticCacheTTL:       time.Duration(getEnvInt("STATIC_CACHE_TTL_MINUTES", 30)) * time.Minute,
		OptionalFetchTimeout: time.Duration(getEnvInt("OPTIONAL_FETCH_TIMEOUT_MS", 1500)) * time.Millisecond,
		RateLimitPerMinute:   getEnvInt("DASHBOARD_RATE_LIMIT_PER_MINUTE", 30),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("Invalid integer for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}
