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

	JWTSecret string

	// Relay. Empty RedisAddr leaves the instance standalone.
	RedisAddr     string // host:port
	RedisDB       int
	AdvertiseAddr string // address clients use to reach this instance
}

func LoadConfig() Config {
	cfg := Config{
		Env:           getEnv("APP_ENV", "dev"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		AdvertiseAddr: getEnv("ADVERTISE_ADDR", ""),
	}
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)
	if cfg.AdvertiseAddr == "" {
		cfg.AdvertiseAddr = cfg.HTTPAddr
	}
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
