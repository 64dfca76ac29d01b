package config

import "github.com/caarlos0/env/v11"

// LogConfig controls the global logger. With File set, output is mirrored
// into a file rotated at MaxMB, keeping Backups older copies.
type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty      bool   `env:"LOG_PRETTY" envDefault:"false"`
	SampleEvery int    `env:"LOG_SAMPLE_EVERY" envDefault:"0"`
	Service     string `env:"LOG_SERVICE" envDefault:"casino-server"`
	File        string `env:"LOG_FILE"`
	MaxMB       int    `env:"LOG_MAX_MB" envDefault:"10"`
	Backups     int    `env:"LOG_BACKUPS" envDefault:"1"`
}

func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	err := env.Parse(&cfg)
	return cfg, err
}
