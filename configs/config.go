package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL        string
	SessionCookieName string
	AccountHeader     string
	TeamHeader        string
	RedisURI          string
	SQLitePath        string
	ProfileTimeout    time.Duration
	SyncTimeout       time.Duration
	PollSpec          string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	return &Config{
		APIBaseURL:        getEnv("API_BASE_URL", "http://localhost:3000"),
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "fp_session"),
		AccountHeader:     getEnv("ACCOUNT_HEADER", "X-Account-ID"),
		TeamHeader:        getEnv("TEAM_HEADER", "X-Team-ID"),
		RedisURI:          getEnv("REDIS_URI", "redis://localhost:6379/0"),
		SQLitePath:        getEnv("SQLITE_PATH", "dashboard.db"),
		ProfileTimeout:    time.Duration(getEnvInt("PROFILE_TIMEOUT_SECONDS", 4)) * time.Second,
		SyncTimeout:       time.Duration(getEnvInt("SYNC_TIMEOUT_SECONDS", 120)) * time.Second,
		PollSpec:          getEnv("POLL_INTERVAL", "@every 0h0m30s"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
