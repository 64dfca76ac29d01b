package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	JWTSecret   string   `env:"JWT_SECRET,required,notEmpty"`
	AdminAPIKey string   `env:"ADMIN_API_KEY"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	HandIdleTimeout  time.Duration `env:"HAND_IDLE_TIMEOUT" envDefault:"10m"`
	HandReapInterval time.Duration `env:"HAND_REAP_INTERVAL" envDefault:"30s"`

	MinBet          string `env:"MIN_BET" envDefault:"10"`
	MaxBet          string `env:"MAX_BET" envDefault:"50000"`
	StartingBalance string `env:"STARTING_BALANCE" envDefault:"10000"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
