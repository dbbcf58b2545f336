package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every configurable concern of the service.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	AI       AIConfig
	Auth     AuthConfig
	Generate GenerateConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	generate, err := loadGenerateConfig()
	if err != nil {
		return nil, err
	}

	auth, err := loadAuthConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		Database: loadDatabaseConfig(),
		AI:       loadAIConfig(),
		Auth:     auth,
		Generate: generate,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// DatabaseConfig locates the SQLite database file.
type DatabaseConfig struct {
	Path string
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{Path: getEnvOrDefault("DB_PATH", "studybuddy.db")}
}

// AIConfig carries the completion provider credentials and model selection.
// Sampling parameters are deliberately not configurable; they are fixed
// constants owned by the AI service.
type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Enabled reports whether provider credentials were supplied.
func (c AIConfig) Enabled() bool {
	return c.APIKey != ""
}

func loadAIConfig() AIConfig {
	return AIConfig{
		APIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		BaseURL: getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		Model:   getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
	}
}

// AuthConfig controls issued token lifetime.
type AuthConfig struct {
	TokenTTL time.Duration
}

func loadAuthConfig() (AuthConfig, error) {
	hours := 720
	if override, err := parseOptionalIntEnv("TOKEN_TTL_HOURS"); err != nil {
		return AuthConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return AuthConfig{}, fmt.Errorf("TOKEN_TTL_HOURS must be positive, got %d", *override)
		}
		hours = *override
	}
	return AuthConfig{TokenTTL: time.Duration(hours) * time.Hour}, nil
}

// GenerateConfig sizes the background reply-generation worker pool.
type GenerateConfig struct {
	Workers   int
	QueueSize int
}

func loadGenerateConfig() (GenerateConfig, error) {
	workers := 2
	if override, err := parseOptionalIntEnv("GENERATE_WORKERS"); err != nil {
		return GenerateConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return GenerateConfig{}, fmt.Errorf("GENERATE_WORKERS must be positive, got %d", *override)
		}
		workers = *override
	}

	queueSize := 64
	if override, err := parseOptionalIntEnv("GENERATE_QUEUE_SIZE"); err != nil {
		return GenerateConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return GenerateConfig{}, fmt.Errorf("GENERATE_QUEUE_SIZE must be positive, got %d", *override)
		}
		queueSize = *override
	}

	return GenerateConfig{Workers: workers, QueueSize: queueSize}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
