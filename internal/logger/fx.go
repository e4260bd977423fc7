package logger

import (
	"github.com/smallbiznis/gatepass/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("logger",
	fx.Provide(func(cfg config.Config) (*zap.Logger, error) {
		return New(cfg.Environment, cfg.LogLevel)
	}),
)
