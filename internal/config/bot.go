package config

import "github.com/caarlos0/env/v11"

type BotConfig struct {
	ServerURL string `env:"SERVER_URL" envDefault:"http://localhost:8080"`
	UserID    string `env:"USER_ID" envDefault:"bot"`
	Rounds    int    `env:"ROUNDS" envDefault:"5"`
	Wager     int64  `env:"WAGER" envDefault:"10"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
