package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenAddr string
	DataPath   string

	// ServerURL is where client tooling reaches a running server.
	ServerURL string

	AuthUser string
	AuthPass string
	AuthFile string

	// Upstream generative API. The key is read from the environment only
	// and never leaves the server process.
	GenAPIKey  string
	GenBaseURL string
	GenModel   string
	GenTimeout time.Duration

	// CORS origin allowed on /api routes. "*" by default so a browser
	// client served elsewhere can reach the API.
	CORSOrigin string

	AutoSaveDebounce  time.Duration
	DoubleEnterWindow time.Duration

	DBBusyTimeout time.Duration
	DBLockTimeout time.Duration

	ImproveMaxLength   int
	ImproveTemperature float64
}

func Load() Config {
	initEnvFile()
	cfg := Config{
		ListenAddr: envOr("QUILL_LISTEN_ADDR", "127.0.0.1:8080"),
		ServerURL:  envOr("QUILL_SERVER_URL", "http://127.0.0.1:8080"),
		DataPath:   os.Getenv("QUILL_DATA_PATH"),
		AuthUser:   os.Getenv("QUILL_AUTH_USER"),
		AuthPass:   os.Getenv("QUILL_AUTH_PASS"),
		AuthFile:   os.Getenv("QUILL_AUTH_FILE"),
		GenAPIKey:  os.Getenv("QUILL_GEN_API_KEY"),
		GenBaseURL: envOr("QUILL_GEN_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GenModel:   envOr("QUILL_GEN_MODEL", "gemini-2.0-flash"),
		CORSOrigin: envOr("QUILL_CORS_ORIGIN", "*"),
	}

	cfg.GenTimeout = parseDurationOr("QUILL_GEN_TIMEOUT", 60*time.Second)
	cfg.AutoSaveDebounce = parseDurationOr("QUILL_AUTOSAVE_DEBOUNCE", time.Second)
	cfg.DoubleEnterWindow = parseDurationOr("QUILL_DOUBLE_ENTER_WINDOW", 600*time.Millisecond)
	cfg.DBBusyTimeout = parseDurationOr("QUILL_DB_BUSY_TIMEOUT", 5*time.Second)
	cfg.DBLockTimeout = parseDurationOr("QUILL_DB_LOCK_TIMEOUT", 3*time.Second)
	cfg.ImproveMaxLength = parseIntOr("QUILL_IMPROVE_MAX_LENGTH", 1024)
	cfg.ImproveTemperature = parseFloatOr("QUILL_IMPROVE_TEMPERATURE", 0.4)
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func parseIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}

func parseFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return f
		}
	}
	return fallback
}
