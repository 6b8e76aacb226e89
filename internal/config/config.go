// Package config loads and validates application configuration from
// environment variables. A .env file in the working directory is applied
// first when present, so local development does not need exported variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DataDir is the directory holding the CSV ledger tables and the user
	// table. Defaults to "data".
	DataDir string

	// UploadsDir is the root of the photo blob store. Defaults to "uploads".
	UploadsDir string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// JWTSecret signs session tokens. Required.
	JWTSecret string

	// JWTExpiry is the session token lifetime. Defaults to 24h.
	JWTExpiry time.Duration

	// MaxUploadBytes caps request body sizes, which in practice caps photo
	// uploads. Defaults to 10 MiB.
	MaxUploadBytes int64

	// AdminUser / AdminPassword seed the bootstrap admin account when the
	// user table is empty. Both default to "admin"; change them in any real
	// deployment.
	AdminUser     string
	AdminPassword string
}

// Load reads configuration from the environment (after applying .env when
// present) and returns a Config. Returns an error listing any required
// variables that are not set.
func Load() (Config, error) {
	// Missing .env is fine; exported variables win over file values.
	_ = godotenv.Load()

	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		DataDir:       getEnv("DATA_DIR", "data"),
		UploadsDir:    getEnv("UPLOADS_DIR", "uploads"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CORSOrigins:   splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		AdminUser:     getEnv("ADMIN_USER", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
	}

	var missing []string

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	cfg.JWTExpiry = 24 * time.Hour
	if raw := os.Getenv("JWT_EXPIRY"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid JWT_EXPIRY %q: %w", raw, err)
		}
		cfg.JWTExpiry = d
	}

	cfg.MaxUploadBytes = 10 << 20
	if raw := os.Getenv("MAX_UPLOAD_BYTES"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid MAX_UPLOAD_BYTES %q", raw)
		}
		cfg.MaxUploadBytes = n
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
