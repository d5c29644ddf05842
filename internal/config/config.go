// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// MinSecretKeyLength is the minimum length of the token signing key.
const MinSecretKeyLength = 32

// Supported values of ANONBOX_VERIFIER and ANONBOX_LOG_FORMAT.
const (
	VerifierImmediate = "immediate"
	LogFormatJSON     = "json"
	LogFormatText     = "text"
)

// ErrMissingSecretKey is returned when ANONBOX_SECRET_KEY is unset.
var ErrMissingSecretKey = errors.New("ANONBOX_SECRET_KEY is required")

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr     string
	DBPath         string
	SecretKey      []byte
	TokenTTL       time.Duration
	GeminiAPIKey   string
	GeminiModel    string
	GeminiBaseURL  string
	SuggestTimeout time.Duration
	Verifier       string
	LogFormat      string
}

// HasGeminiCredentials reports whether live suggestions can be requested.
// Without a key the suggestion service runs without a generator and always
// falls back to the default prompts.
func (c *Config) HasGeminiCredentials() bool {
	return c.GeminiAPIKey != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// ANONBOX_SECRET_KEY is required and must be at least 32 bytes.
// Optional variables with defaults: ANONBOX_LISTEN_ADDR (127.0.0.1:8080),
// ANONBOX_DB_PATH (anonbox.db), ANONBOX_TOKEN_TTL (24h), ANONBOX_GEMINI_MODEL
// (gemini-2.0-flash), ANONBOX_GEMINI_BASE_URL, ANONBOX_SUGGEST_TIMEOUT (10s),
// ANONBOX_VERIFIER (immediate), ANONBOX_LOG_FORMAT (json).
func Load() (*Config, error) {
	secret := os.Getenv("ANONBOX_SECRET_KEY")
	if secret == "" {
		return nil, ErrMissingSecretKey
	}
	if len(secret) < MinSecretKeyLength {
		return nil, fmt.Errorf("ANONBOX_SECRET_KEY must be at least %d bytes, got %d", MinSecretKeyLength, len(secret))
	}

	tokenTTL, err := durationEnv("ANONBOX_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	suggestTimeout, err := durationEnv("ANONBOX_SUGGEST_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	verifier := stringEnv("ANONBOX_VERIFIER", VerifierImmediate)
	if verifier != VerifierImmediate {
		return nil, fmt.Errorf("ANONBOX_VERIFIER has unsupported value %q", verifier)
	}

	logFormat := stringEnv("ANONBOX_LOG_FORMAT", LogFormatJSON)
	if logFormat != LogFormatJSON && logFormat != LogFormatText {
		return nil, fmt.Errorf("ANONBOX_LOG_FORMAT must be %q or %q, got %q", LogFormatJSON, LogFormatText, logFormat)
	}

	return &Config{
		ListenAddr:     stringEnv("ANONBOX_LISTEN_ADDR", "127.0.0.1:8080"),
		DBPath:         stringEnv("ANONBOX_DB_PATH", "anonbox.db"),
		SecretKey:      []byte(secret),
		TokenTTL:       tokenTTL,
		GeminiAPIKey:   os.Getenv("ANONBOX_GEMINI_API_KEY"),
		GeminiModel:    stringEnv("ANONBOX_GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL:  stringEnv("ANONBOX_GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		SuggestTimeout: suggestTimeout,
		Verifier:       verifier,
		LogFormat:      logFormat,
	}, nil
}

func stringEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, parsed)
	}
	return parsed, nil
}
