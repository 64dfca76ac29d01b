package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type RateLimitConfig struct {
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	Bets          int           `env:"RATE_LIMIT_BETS" envDefault:"10"`
	Window        time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1s"`
}

func LoadRateLimit() (RateLimitConfig, error) {
	var cfg RateLimitConfig
	err := env.Parse(&cfg)
	return cfg, err
}
