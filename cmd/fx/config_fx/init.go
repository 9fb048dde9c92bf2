package config_fx

import (
	"dishdash/internal/config"
	"dishdash/pkg/logging"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Invoke(initLogging),
)

func provideConfig() (*config.Config, error) {
	return config.Load()
}

func initLogging(cfg *config.Config) {
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
}
