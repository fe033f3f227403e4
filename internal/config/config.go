package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	OpenAIKey         string
	OpenAIEndpoint    string
	OpenAIModel       string
	OpenAITemperature float32
	OpenAITimeout     time.Duration
	MaxWords          int
	Database          string
	LogFile           string
	Environment       string
	Port              string
	SessionTTL        time.Duration
	MaxUploadBytes    int64
}

// IsProduction reports whether logs should use the production encoder.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads configuration from the environment, providing sensible defaults.
func Load() Config {
	// Load .env file if it exists (useful for development)
	_ = godotenv.Load()
	cfg := Config{
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIEndpoint:    getEnv("OPENAI_API_ENDPOINT", "https://api.openai.com/v1"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAITemperature: float32(getFloat("OPENAI_TEMPERATURE", 0.7)),
		OpenAITimeout:     time.Duration(getInt("OPENAI_TIMEOUT_SECONDS", 120)) * time.Second,
		MaxWords:          getInt("MAX_WORDS", 7500),
		Database:          getEnv("DATABASE_PATH", "./data/akademiya.db"),
		LogFile:           getEnv("LOG_FILE", "./logs/akademiya.log"),
		Environment:       getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		SessionTTL:        time.Duration(getInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
		MaxUploadBytes:    int64(getInt("MAX_UPLOAD_MB", 20)) << 20,
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database), 0o755); err != nil {
		log.Fatalf("failed to ensure database dir %s: %v", cfg.Database, err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		log.Fatalf("failed to ensure log dir %s: %v", cfg.LogFile, err)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("ignoring invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 || f > 2 {
		log.Printf("ignoring invalid %s=%q, using %.2f", key, raw, fallback)
		return fallback
	}
	return f
}
