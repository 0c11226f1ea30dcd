package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty      bool   `env:"LOG_PRETTY" envDefault:"false"`
	SampleEvery int    `env:"LOG_SAMPLE_EVERY" envDefault:"0"`
	File        string `env:"LOG_FILE"`
	MaxMB       int    `env:"LOG_MAX_MB" envDefault:"10"`
	// Service tags every record so several binaries can share one sink.
	Service string `env:"LOG_SERVICE" envDefault:"trivia-wager"`
}

func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	if err := env.Parse(&cfg); err != nil {
		return LogConfig{}, err
	}
	if cfg.SampleEvery < 0 || cfg.MaxMB < 0 {
		return LogConfig{}, errors.New("LOG_SAMPLE_EVERY and LOG_MAX_MB must not be negative")
	}
	return cfg, nil
}
