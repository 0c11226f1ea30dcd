package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	LedgerMemory   = "memory"
	LedgerSQLite   = "sqlite"
	LedgerPostgres = "postgres"
)

type ServerConfig struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	AdminAPIKey string `env:"ADMIN_API_KEY"`

	LedgerDriver    string `env:"LEDGER_DRIVER" envDefault:"sqlite"`
	PostgresDSN     string `env:"POSTGRES_DSN"`
	SQLitePath      string `env:"SQLITE_PATH" envDefault:"trivia.db"`
	StartingBalance int64  `env:"STARTING_BALANCE" envDefault:"1000"`

	QuestionsPath  string `env:"QUESTIONS_PATH"`
	ShuffleChoices bool   `env:"SHUFFLE_CHOICES" envDefault:"false"`

	MCPEnabled bool `env:"MCP_ENABLED" envDefault:"true"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return ServerConfig{}, err
	}
	if err := cfg.validate(); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

func (c *ServerConfig) validate() error {
	c.LedgerDriver = strings.ToLower(strings.TrimSpace(c.LedgerDriver))
	switch c.LedgerDriver {
	case LedgerMemory:
	case LedgerSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return errors.New("SQLITE_PATH is required for the sqlite ledger")
		}
	case LedgerPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return errors.New("POSTGRES_DSN is required for the postgres ledger")
		}
	default:
		return fmt.Errorf("unknown LEDGER_DRIVER %q", c.LedgerDriver)
	}
	if c.StartingBalance < 0 {
		return errors.New("STARTING_BALANCE must not be negative")
	}
	return nil
}
