package config

type AppConfig struct {
	Server    ServerConfig
	Log       LogConfig
	Rounds    RoundsConfig
	RateLimit RateLimitConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	roundsCfg, err := LoadRounds()
	if err != nil {
		return AppConfig{}, err
	}
	rlCfg, err := LoadRateLimit()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server:    serverCfg,
		Log:       logCfg,
		Rounds:    roundsCfg,
		RateLimit: rlCfg,
	}, nil
}
