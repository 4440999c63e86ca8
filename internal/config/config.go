// Package config loads application configuration from environment variables.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// telegram
	TGApiID      int
	TGApiHash    string
	TGSessionStr string
	SessionDB    string

	// request pacing
	DelayBetweenRequests float64 // seconds between metadata lookups
	MaxFloodWaitSeconds  int     // flood waits above this are not slept through

	// files
	InputFile  string
	OutputFile string

	// nats (optional, empty disables publishing)
	NatsURL string

	// logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TGApiID:              getEnvInt("TG_API_ID", 0),
		TGApiHash:            getEnv("TG_API_HASH", ""),
		TGSessionStr:         getEnv("TG_SESSION_STRING", ""),
		SessionDB:            getEnv("SESSION_DB", "./groupmeta_session.db"),
		DelayBetweenRequests: getEnvFloat("DELAY_BETWEEN_REQUESTS", 2.0),
		MaxFloodWaitSeconds:  getEnvInt("MAX_FLOOD_WAIT_SECONDS", 7200),
		InputFile:            getEnv("INPUT_FILE", "input/groups.csv"),
		OutputFile:           getEnv("OUTPUT_FILE", "output/groups_enriched.csv"),
		NatsURL:              getEnv("NATS_URL", ""),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFile:              getEnv("LOG_FILE", ""),
	}

	if cfg.DelayBetweenRequests < 0 {
		cfg.DelayBetweenRequests = 0
	}
	if cfg.MaxFloodWaitSeconds < 0 {
		cfg.MaxFloodWaitSeconds = 0
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
