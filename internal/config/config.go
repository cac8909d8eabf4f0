// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	DefaultVisionAPIURL = "https://api.openai.com/v1/chat/completions"
	DefaultVisionModel  = "gpt-4o-mini"
)

// Config holds service configuration
type Config struct {
	// Remote recognition
	VisionAPIKey             string
	VisionAPIURL             string
	VisionModel              string
	RemoteRecognitionEnabled bool

	// Local fallback
	SamplingStride int

	// Meal storage
	DBDriver    string
	DBPath      string
	DatabaseURL string

	// Remote label cache, disabled when empty
	RedisURL           string
	LabelCacheTTLHours int

	// HTTP transport
	Host string
	Port int

	LogLevel string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	apiKey := getEnvOrDefault("VISION_API_KEY", "")
	if apiKey == "" {
		apiKey = getEnvOrDefault("OPENAI_API_KEY", "")
	}

	cfg := &Config{
		VisionAPIKey:             apiKey,
		VisionAPIURL:             getEnvOrDefault("VISION_API_URL", DefaultVisionAPIURL),
		VisionModel:              getEnvOrDefault("VISION_MODEL", DefaultVisionModel),
		RemoteRecognitionEnabled: getEnvAsBoolOrDefault("REMOTE_RECOGNITION_ENABLED", true),
		SamplingStride:           getEnvAsIntOrDefault("SAMPLING_STRIDE", 20),
		DBDriver:                 getEnvOrDefault("DB_DRIVER", "sqlite"),
		DBPath:                   getEnvOrDefault("DB_PATH", "/data/meal-score.db"),
		DatabaseURL:              getEnvOrDefault("DATABASE_URL", ""),
		RedisURL:                 getEnvOrDefault("REDIS_URL", ""),
		LabelCacheTTLHours:       getEnvAsIntOrDefault("LABEL_CACHE_TTL_HOURS", 24),
		Host:                     getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                     getEnvAsIntOrDefault("PORT", 8012),
		LogLevel:                 getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.SamplingStride < 1 || c.SamplingStride > 200 {
		return fmt.Errorf("SAMPLING_STRIDE must be between 1 and 200, got %d", c.SamplingStride)
	}

	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite driver")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}

	if c.LabelCacheTTLHours < 1 {
		return fmt.Errorf("LABEL_CACHE_TTL_HOURS must be positive, got %d", c.LabelCacheTTLHours)
	}

	return nil
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		return c.DatabaseURL
	}
	return c.DBPath
}

// RemoteConfigured reports whether a remote call can be attempted at all.
func (c *Config) RemoteConfigured() bool {
	return c.RemoteRecognitionEnabled && c.VisionAPIKey != ""
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault gets environment variable as int or returns default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
