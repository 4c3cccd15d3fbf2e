package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port  int
	Debug bool

	// Exercise source; SourceURL wins when both are set
	SourceURL     string
	ExercisesPath string

	// Cache
	CacheTTLSeconds int

	// Sandbox
	SandboxURL            string
	SandboxTimeoutSeconds int

	// Database
	DatabasePath string

	// RabbitMQ; empty disables event publishing
	RabbitMQURL string

	// MCP; empty disables the MCP HTTP listener
	MCPAddr string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                  getEnvInt("PORT", 8080),
		Debug:                 getEnvBool("DEBUG", false),
		SourceURL:             getEnv("SOURCE_URL", ""),
		ExercisesPath:         getEnv("EXERCISES_PATH", "./exercises"),
		CacheTTLSeconds:       getEnvInt("CACHE_TTL_SECONDS", 300),
		SandboxURL:            getEnv("SANDBOX_URL", "https://cql-sandbox.alphora.com/cqf-ruler-r4"),
		SandboxTimeoutSeconds: getEnvInt("SANDBOX_TIMEOUT", 30),
		DatabasePath:          getEnv("DATABASE_PATH", "./clinic.db"),
		RabbitMQURL:           getEnv("RABBITMQ_URL", ""),
		MCPAddr:               getEnv("MCP_ADDR", ""),
	}

	if cfg.SourceURL == "" && cfg.ExercisesPath == "" {
		return nil, fmt.Errorf("SOURCE_URL or EXERCISES_PATH must be set")
	}
	if cfg.CacheTTLSeconds < 0 {
		return nil, fmt.Errorf("CACHE_TTL_SECONDS must not be negative")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
