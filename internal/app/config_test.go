package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllow)
	assert.Equal(t, "", cfg.RedisAddr)
	assert.Equal(t, "", cfg.AIAPIKey)
	assert.Equal(t, "gemini-1.5-pro-001", cfg.AIModel)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CORS_ALLOW", "https://a.example, https://b.example ,")

	cfg := LoadConfig()

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllow)
}
