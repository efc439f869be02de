package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	APIBaseURL       string
	DatabaseURL      string
	SessionStore     string
	JWTSecret        string
	JWTExpiration    time.Duration
	ServerPort       string
	ReminderInterval time.Duration
	HTTPTimeout      time.Duration
	LogLevel         string
	TemplateDir      string
}

func Load() *Config {
	return &Config{
		APIBaseURL:       strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000"), "/"),
		DatabaseURL:      getEnv("DATABASE_URL", "postgresql://postgres@localhost:5432/fichaje"),
		SessionStore:     getEnv("SESSION_STORE", "postgres"),
		JWTSecret:        getEnv("JWT_SECRET", "your-super-secret-key-change-in-production"),
		JWTExpiration:    getDuration("JWT_EXPIRATION", 12*time.Hour),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		ReminderInterval: getDuration("REMINDER_INTERVAL", 15*time.Minute),
		HTTPTimeout:      getDuration("HTTP_TIMEOUT", 15*time.Second),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		TemplateDir:      getEnv("TEMPLATE_DIR", "templates"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration accepts Go duration strings ("15m", "30s"); anything else
// falls back to the default.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
