package ratelimit

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/gatepass/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("rate.limit",
	fx.Provide(func(cfg config.Config, log *zap.Logger) *redis.Client {
		if cfg.RedisAddr == "" {
			log.Warn("redis not configured, purchase rate limiting disabled")
			return nil
		}
		return redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
	}),
	fx.Provide(NewTokenBucket),
)
