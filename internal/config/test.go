package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

var ErrNoTestPostgres = errors.New("TEST_POSTGRES_DSN not set")

// TestConfig points integration tests at real backing services. Each empty
// address means the tests needing it are skipped.
type TestConfig struct {
	PostgresDSN string `env:"TEST_POSTGRES_DSN"`
	RedisAddr   string `env:"TEST_REDIS_ADDR"`
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	err := env.Parse(&cfg)
	return cfg, err
}

// Postgres returns the test DSN, or ErrNoTestPostgres when unset.
func (c TestConfig) Postgres() (string, error) {
	if c.PostgresDSN == "" {
		return "", ErrNoTestPostgres
	}
	return c.PostgresDSN, nil
}
