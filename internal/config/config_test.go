package config

import (
	"os"
	"testing"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{"returns default when not set", "TEST_KEY_UNSET", "default", "", "default"},
		{"returns env value when set", "TEST_KEY_SET", "default", "custom", "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		want         int
	}{
		{"returns default when not set", "TEST_INT_UNSET", 100, "", 100},
		{"parses valid int", "TEST_INT_VALID", 100, "42", 42},
		{"returns default on invalid int", "TEST_INT_INVALID", 100, "not-a-number", 100},
		{"parses zero", "TEST_INT_ZERO", 100, "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnvInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvInt(%q, %d) = %d, want %d", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue bool
		envValue     string
		want         bool
	}{
		{"returns default when not set", "TEST_BOOL_UNSET", true, "", true},
		{"parses true", "TEST_BOOL_TRUE", false, "true", true},
		{"parses false", "TEST_BOOL_FALSE", true, "false", false},
		{"parses 1 as true", "TEST_BOOL_ONE", false, "1", true},
		{"returns default on invalid bool", "TEST_BOOL_INVALID", true, "yes", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnvBool(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.CacheTTLSeconds != 300 {
		t.Errorf("CacheTTLSeconds = %d, want 300", cfg.CacheTTLSeconds)
	}
	if cfg.ExercisesPath != "./exercises" {
		t.Errorf("ExercisesPath = %q, want ./exercises", cfg.ExercisesPath)
	}
	if cfg.SandboxURL == "" {
		t.Error("SandboxURL should have a default")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	envVars := map[string]string{
		"PORT":              "9000",
		"SOURCE_URL":        "https://catalog.example.com",
		"CACHE_TTL_SECONDS": "60",
		"EXERCISES_PATH":    "/custom/exercises",
		"RABBITMQ_URL":      "amqp://localhost:5672/",
	}

	for k, v := range envVars {
		os.Setenv(k, v)
		defer os.Unsetenv(k)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.SourceURL != "https://catalog.example.com" {
		t.Errorf("SourceURL = %q", cfg.SourceURL)
	}
	if cfg.CacheTTLSeconds != 60 {
		t.Errorf("CacheTTLSeconds = %d, want 60", cfg.CacheTTLSeconds)
	}
	if cfg.ExercisesPath != "/custom/exercises" {
		t.Errorf("ExercisesPath = %q, want /custom/exercises", cfg.ExercisesPath)
	}
	if cfg.RabbitMQURL != "amqp://localhost:5672/" {
		t.Errorf("RabbitMQURL = %q", cfg.RabbitMQURL)
	}
}

func TestLoad_NegativeTTL(t *testing.T) {
	os.Setenv("CACHE_TTL_SECONDS", "-1")
	defer os.Unsetenv("CACHE_TTL_SECONDS")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject a negative cache TTL")
	}
}
