// Package config содержит логику чтения конфигурации POS-шлюза.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации POS-шлюза.
type Config struct {
	RunAddress string `env:"RUN_ADDRESS"`
	BackendURL string `env:"BACKEND_API_URL"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envBackendURL := cfg.BackendURL

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.BackendURL, "b", "http://127.0.0.1:8000/api/v1", "base URL of the POS backend API")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envBackendURL != "" {
		cfg.BackendURL = envBackendURL
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.BackendURL == "" {
		cfg.BackendURL = "http://127.0.0.1:8000/api/v1"
	}

	return cfg, nil
}
