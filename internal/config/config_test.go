package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("MAX_WORDS", "")
	t.Setenv("OPENAI_TEMPERATURE", "")
	t.Setenv("SESSION_TTL_MINUTES", "")
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "db", "test.db"))
	t.Setenv("LOG_FILE", filepath.Join(dir, "logs", "test.log"))

	cfg := Load()

	assert.Empty(t, cfg.OpenAIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, 7500, cfg.MaxWords)
	assert.InDelta(t, 0.7, cfg.OpenAITemperature, 0.0001)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.DirExists(t, filepath.Join(dir, "db"))
	assert.DirExists(t, filepath.Join(dir, "logs"))
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "a.db"))
	t.Setenv("LOG_FILE", filepath.Join(dir, "a.log"))
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("MAX_WORDS", "100")
	t.Setenv("OPENAI_TEMPERATURE", "0.2")
	t.Setenv("APP_ENV", "production")

	cfg := Load()

	assert.Equal(t, "sk-test", cfg.OpenAIKey)
	assert.Equal(t, 100, cfg.MaxWords)
	assert.InDelta(t, 0.2, cfg.OpenAITemperature, 0.0001)
	assert.True(t, cfg.IsProduction())
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "a.db"))
	t.Setenv("LOG_FILE", filepath.Join(dir, "a.log"))
	t.Setenv("MAX_WORDS", "lots")
	t.Setenv("OPENAI_TEMPERATURE", "9")

	cfg := Load()

	assert.Equal(t, 7500, cfg.MaxWords)
	assert.InDelta(t, 0.7, cfg.OpenAITemperature, 0.0001)
}
