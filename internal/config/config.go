package config

import (
	"fmt"
	"os"
)

type Config struct {
	DatabasePath  string
	SessionSecret string
	MistralAPIKey string
	MistralModel  string
	MistralURL    string
	LogLevel      string
	Port          string
}

func Load() (Config, error) {
	config := Config{
		DatabasePath:  envOrDefault("DATABASE_PATH", "./data/colist.db"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		MistralAPIKey: os.Getenv("MISTRAL_API_KEY"),
		MistralModel:  os.Getenv("MISTRAL_MODEL"),
		MistralURL:    os.Getenv("MISTRAL_API_BASE"),
		LogLevel:      envOrDefault("LOG_LEVEL", "info"),
		Port:          envOrDefault("PORT", "8080"),
	}

	if config.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is required")
	}

	return config, nil
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
