// Package config provides service settings from environment variables and
// the JSON agents file.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	HTTPPort int
	// SelfURL is the base URL agents use for delegation sub-calls.
	SelfURL string

	// Storage
	DatabaseURL string
	WorkdocsDir string
	AgentsFile  string
	ProjectName string

	// Model backend
	ModelProvider string // "anthropic", "openai", "mock"
	ModelName     string

	// Tool dispatch
	ToolTimeout     time.Duration
	ToolMaxParallel int

	// Logging
	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		HTTPPort:        getEnvInt("HTTP_PORT", 8080),
		SelfURL:         getEnv("SELF_URL", "http://localhost:8080"),
		DatabaseURL:     getEnv("DATABASE_URL", "file:agenthub.db?cache=shared&mode=rwc"),
		WorkdocsDir:     getEnv("WORKDOCS_DIR", "work_docs"),
		AgentsFile:      getEnv("AGENTS_FILE", "agents.json"),
		ProjectName:     getEnv("PROJECT_NAME", "default-project"),
		ModelProvider:   getEnv("MODEL_PROVIDER", "anthropic"),
		ModelName:       getEnv("MODEL_NAME", ""),
		ToolTimeout:     time.Duration(getEnvInt("TOOL_TIMEOUT_MS", 60000)) * time.Millisecond,
		ToolMaxParallel: getEnvInt("TOOL_MAX_PARALLEL", 8),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
