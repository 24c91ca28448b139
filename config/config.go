package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds all server configuration
type Config struct {
	ServerPort      int           `json:"server_port"`
	LogLevel        string        `json:"log_level"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	Version         string        `json:"version"`

	// Task store
	StoreBackend   string        `json:"store_backend"`
	StoreTimeout   time.Duration `json:"store_timeout"`
	RedisURL       string        `json:"redis_url"`
	RedisKeyPrefix string        `json:"redis_key_prefix"`
	SnapshotPath   string        `json:"snapshot_path"` // memory backend only; empty disables snapshots

	// Text generation
	CohereAPIKey  string        `json:"-"`
	CohereModel   string        `json:"cohere_model"`
	CohereBaseURL string        `json:"cohere_base_url"`
	AITimeout     time.Duration `json:"ai_timeout"`
}

// LoadConfig loads configuration from environment variables with sensible defaults
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerPort:      getEnvInt("PORT", 8080),
		LogLevel:        getEnvString("LOG_LEVEL", "INFO"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		Version:         getEnvString("VERSION", "1.0.0"),
		StoreBackend:    getEnvString("STORE_BACKEND", BackendMemory),
		StoreTimeout:    getEnvDuration("STORE_TIMEOUT", 5*time.Second),
		RedisURL:        getEnvString("REDIS_URL", "redis://localhost:6379"),
		RedisKeyPrefix:  getEnvString("REDIS_KEY_PREFIX", "dropby"),
		SnapshotPath:    getEnvString("SNAPSHOT_PATH", ""),
		CohereAPIKey:    getEnvString("COHERE_API_KEY", ""),
		CohereModel:     getEnvString("COHERE_MODEL", "command-r"),
		CohereBaseURL:   getEnvString("COHERE_BASE_URL", "https://api.cohere.com"),
		AITimeout:       getEnvDuration("AI_TIMEOUT", 30*time.Second),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Address returns the server address in host:port format
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

// ComposerEnabled reports whether a text-generation API key is configured.
func (c *Config) ComposerEnabled() bool {
	return c.CohereAPIKey != ""
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// validate performs basic validation of the configuration
func (c *Config) validate() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid server port %d: must be between 1 and 65535", c.ServerPort)
	}

	validLevels := map[string]bool{
		"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true,
	}
	upperLevel := strings.ToUpper(strings.TrimSpace(c.LogLevel))
	if !validLevels[upperLevel] {
		return fmt.Errorf("invalid log level '%s': must be DEBUG, INFO, WARN or ERROR", c.LogLevel)
	}
	c.LogLevel = upperLevel

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout)
	}
	if c.ShutdownTimeout > 5*time.Minute {
		return fmt.Errorf("invalid shutdown timeout %v: must not exceed 5 minutes", c.ShutdownTimeout)
	}

	if strings.TrimSpace(c.Version) == "" {
		return fmt.Errorf("version cannot be empty")
	}
	c.Version = strings.TrimSpace(c.Version)

	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	switch c.StoreBackend {
	case BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("redis URL cannot be empty when the redis backend is selected")
		}
		if strings.TrimSpace(c.RedisKeyPrefix) == "" {
			return fmt.Errorf("redis key prefix cannot be empty when the redis backend is selected")
		}
	default:
		return fmt.Errorf("invalid store backend '%s': must be memory or redis", c.StoreBackend)
	}

	if c.StoreTimeout <= 0 {
		return fmt.Errorf("invalid store timeout %v: must be positive", c.StoreTimeout)
	}
	if c.StoreTimeout > time.Minute {
		return fmt.Errorf("invalid store timeout %v: must not exceed 1 minute", c.StoreTimeout)
	}

	if c.AITimeout <= 0 {
		return fmt.Errorf("invalid ai timeout %v: must be positive", c.AITimeout)
	}
	if c.AITimeout > 5*time.Minute {
		return fmt.Errorf("invalid ai timeout %v: must not exceed 5 minutes", c.AITimeout)
	}

	if c.ComposerEnabled() {
		u, err := url.Parse(c.CohereBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid cohere base URL '%s'", c.CohereBaseURL)
		}
		if strings.TrimSpace(c.CohereModel) == "" {
			return fmt.Errorf("cohere model cannot be empty when an API key is set")
		}
	}

	return nil
}
