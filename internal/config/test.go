package config

import (
	"errors"
	"strings"

	"github.com/caarlos0/env/v11"
)

// ErrNoTestDatabase is returned by LoadTest when no Postgres DSN is configured.
// Database-backed tests skip on it.
var ErrNoTestDatabase = errors.New("TEST_POSTGRES_DSN not set")

type TestConfig struct {
	PostgresDSN string `env:"TEST_POSTGRES_DSN"`
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	if err := env.Parse(&cfg); err != nil {
		return TestConfig{}, err
	}
	cfg.PostgresDSN = strings.TrimSpace(cfg.PostgresDSN)
	if cfg.PostgresDSN == "" {
		return TestConfig{}, ErrNoTestDatabase
	}
	return cfg, nil
}
