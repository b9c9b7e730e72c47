package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	Environment     string
	FirebaseProject string
	StorageBucket   string
	SendgridKey     string
	EmailSender     string

	// Product-tuning knobs for the messaging core. Defaults mirror the
	// client behavior: 2s trailing debounce on typing, entries treated
	// as stale after 4s without refresh, and at most one email per
	// sender/recipient pair every 15 minutes.
	TypingDebounce   time.Duration
	TypingStaleAfter time.Duration
	EmailDebounce    time.Duration
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		FirebaseProject:  getEnv("FIREBASE_PROJECT_ID", ""),
		StorageBucket:    getEnv("STORAGE_BUCKET", ""),
		SendgridKey:      getEnv("SENDGRID_API_KEY", ""),
		EmailSender:      getEnv("EMAIL_SENDER", "notifications@playfolio.gg"),
		TypingDebounce:   getEnvAsDuration("TYPING_DEBOUNCE", 2*time.Second),
		TypingStaleAfter: getEnvAsDuration("TYPING_STALE_AFTER", 4*time.Second),
		EmailDebounce:    getEnvAsDuration("EMAIL_DEBOUNCE", 15*time.Minute),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
