package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type RoundsConfig struct {
	CrashWait  time.Duration `env:"CRASH_WAIT" envDefault:"10s"`
	CrashPause time.Duration `env:"CRASH_PAUSE" envDefault:"3s"`
	CrashTick  time.Duration `env:"CRASH_TICK" envDefault:"100ms"`

	ColorRoundSeconds  int           `env:"COLOR_ROUND_SECONDS" envDefault:"60"`
	ColorCutoffSeconds int           `env:"COLOR_CUTOFF_SECONDS" envDefault:"10"`
	ColorResultPause   time.Duration `env:"COLOR_RESULT_PAUSE" envDefault:"5s"`

	History int `env:"ROUND_HISTORY" envDefault:"20"`
}

func LoadRounds() (RoundsConfig, error) {
	var cfg RoundsConfig
	err := env.Parse(&cfg)
	return cfg, err
}
