package common

import (
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Extract ExtractConfig
	Batch   BatchConfig
	Log     LogConfig
}

// ExtractConfig holds extraction-related configuration
type ExtractConfig struct {
	LayoutName string // name of a built-in layout descriptor
	LayoutFile string // path to a JSON layout descriptor; overrides LayoutName
}

// BatchConfig holds batch-processing configuration
type BatchConfig struct {
	MaxParallel int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Extract: ExtractConfig{
			LayoutName: getEnv("RECON_LAYOUT", "standard"),
			LayoutFile: getEnv("RECON_LAYOUT_FILE", ""),
		},
		Batch: BatchConfig{
			MaxParallel: getEnvAsInt("RECON_MAX_PARALLEL", 4),
		},
		Log: LogConfig{
			Level: getEnv("RECON_LOG_LEVEL", "info"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Extract.LayoutName == "" && c.Extract.LayoutFile == "" {
		return NewAppError("CONFIG_ERROR", "RECON_LAYOUT or RECON_LAYOUT_FILE is required", ErrInvalidInput)
	}
	if c.Batch.MaxParallel < 1 {
		return NewAppError("CONFIG_ERROR", "RECON_MAX_PARALLEL must be at least 1", ErrInvalidInput)
	}
	return nil
}
