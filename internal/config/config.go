// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable. Required values are enforced by must(); the rest fall
// back to development defaults.
type Config struct {
	Env          string // application environment (dev/test/prod)
	Port         string // HTTP port to listen on
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to sign access tokens
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing

	// FrontendURL is the allowed CORS origin and the base for public share
	// links (<FrontendURL>/share/<token>).
	FrontendURL string

	// GeminiAPIKey authenticates calls to the summarization API. When empty
	// the summarize endpoint fails fast with a misconfiguration error.
	GeminiAPIKey string

	SummarizeTimeout time.Duration // upper bound on one summarization call
	ExportTimeout    time.Duration // upper bound on one PDF render
}

// Load reads configuration from the environment. Missing required variables
// cause the program to exit with a fatal log message.
func Load() *Config {
	return &Config{
		Env:              getenv("APP_ENV", "dev"),
		Port:             getenv("APP_PORT", "5000"),
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"),
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		JWTSecret:        must("JWT_SECRET"),
		AccessTTLMin:     envInt("ACCESS_TOKEN_TTL_MIN", 7*24*60),
		BcryptCost:       envInt("BCRYPT_COST", 10),
		FrontendURL:      getenv("FRONTEND_URL", "http://localhost:3000"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		SummarizeTimeout: envDur("SUMMARIZE_TIMEOUT", 30*time.Second),
		ExportTimeout:    envDur("EXPORT_TIMEOUT", 30*time.Second),
	}
}

// must retrieves a required environment variable and exits when it is unset.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, v)
	}
	return d
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
