package app

import (
	"fmt"
	"os"
	"strings"
)

type Config struct {
	Env       string
	HTTPAddr  string
	CORSAllow []string

	RedisAddr string // host:port, empty disables the cross-instance bus
	RedisDB   int

	AIAPIURL string
	AIAPIKey string // empty disables AI analysis
	AIModel  string
}

func LoadConfig() Config {
	cfg := Config{
		Env:      getEnv("APP_ENV", "dev"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		RedisAddr: getEnv("REDIS_ADDR", ""),

		AIAPIURL: getEnv("AI_API_URL", "https://generativelanguage.googleapis.com/v1/models"),
		AIAPIKey: getEnv("AI_API_KEY", ""),
		AIModel:  getEnv("AI_MODEL", "gemini-1.5-pro-001"),
	}
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)
	// CORS allowlist
	allow := getEnv("CORS_ALLOW", "http://localhost:5173")
	cfg.CORSAllow = splitCSV(allow)
	return cfg
}

// getEnv returns the env var or a default
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getEnvInt parses an int env var with a fallback
func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		var i int
		_, _ = fmt.Sscanf(v, "%d", &i)
		if i > 0 {
			return i
		}
	}
	return def
}

// splitCSV trims and filters a comma-separated list
func splitCSV(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
