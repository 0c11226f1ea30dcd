package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

type QuizConfig struct {
	AllowNegativeBalance bool          `env:"ALLOW_NEGATIVE_BALANCE" envDefault:"false"`
	MaxWager             int64         `env:"MAX_WAGER" envDefault:"0"`
	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"15m"`
	ResultRetention      time.Duration `env:"RESULT_RETENTION" envDefault:"10m"`
	JanitorInterval      time.Duration `env:"JANITOR_INTERVAL" envDefault:"1m"`
}

func LoadQuiz() (QuizConfig, error) {
	var cfg QuizConfig
	if err := env.Parse(&cfg); err != nil {
		return QuizConfig{}, err
	}
	if cfg.MaxWager < 0 {
		return QuizConfig{}, errors.New("MAX_WAGER must not be negative")
	}
	return cfg, nil
}
