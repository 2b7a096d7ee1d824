// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Channel modes for the outbound dispatcher.
const (
	ModeHTTP     = "http"
	ModeRealtime = "realtime"
)

// Outbound realtime envelope shapes. The exact envelope is a deployment
// contract with the remote pipeline, so it is a configuration point.
const (
	EnvelopePlain  = "plain"
	EnvelopeAction = "action"
)

// Config holds all application configuration.
type Config struct {
	EngineURL      string
	Mode           string
	Envelope       string
	DBPath         string
	LogPath        string
	Port           string
	RequestTimeout time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	timeout := getEnvInt("REQUEST_TIMEOUT_SECONDS", 30)
	if timeout <= 0 {
		timeout = 30
	}

	cfg := &Config{
		EngineURL:      getEnv("ENGINE_URL", "http://localhost:8000/api/v1"),
		Mode:           strings.ToLower(getEnv("CHAT_MODE", ModeHTTP)),
		Envelope:       strings.ToLower(getEnv("REALTIME_ENVELOPE", EnvelopePlain)),
		DBPath:         getEnv("DB_PATH", "./data/advisor.db"),
		LogPath:        getEnv("LOG_PATH", "./data/advisor.log"),
		Port:           getEnv("PORT", "8000"),
		RequestTimeout: time.Duration(timeout) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.EngineURL == "" {
		return fmt.Errorf("ENGINE_URL cannot be empty")
	}
	if c.Mode != ModeHTTP && c.Mode != ModeRealtime {
		return fmt.Errorf("CHAT_MODE must be %q or %q, got %q", ModeHTTP, ModeRealtime, c.Mode)
	}
	if c.Envelope != EnvelopePlain && c.Envelope != EnvelopeAction {
		return fmt.Errorf("REALTIME_ENVELOPE must be %q or %q, got %q", EnvelopePlain, EnvelopeAction, c.Envelope)
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
