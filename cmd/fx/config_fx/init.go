package config_fx

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"pmsportal/internal/config"
	"pmsportal/pkg/logger"
)

var Module = fx.Provide(config.Load, provideLogger)

func provideLogger(cfg *config.Config) zerolog.Logger {
	return logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
}
