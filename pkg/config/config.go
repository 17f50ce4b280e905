package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	AppEnv             string
	BaseURL            string
	StoreDriver        string
	DataFile           string
	DatabaseURL        string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisKey           string
	JWTSecret          string
	TokenTTL           time.Duration
	DefaultTTLSeconds  int64
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	LogLevel           string
	LogFormat          string
	LogFile            string
}

func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	return &Config{
		Port:               getEnv("PORT", "8080"),
		AppEnv:             getEnv("APP_ENV", "local"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		StoreDriver:        getEnv("STORE_DRIVER", "json"),
		DataFile:           getEnv("DATA_FILE", "db.json"),
		DatabaseURL:        getEnv("DATABASE_URL", "file:db.sqlite"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		RedisKey:           getEnv("REDIS_KEY", "shortly:state"),
		JWTSecret:          getEnv("JWT_SECRET", "secret"),
		TokenTTL:           getEnvDuration("TOKEN_TTL", 7*24*time.Hour),
		DefaultTTLSeconds:  int64(getEnvInt("DEFAULT_TTL_SECONDS", 60*60*24*7)),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		LogFile:            getEnv("LOG_FILE", ""),
	}
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
