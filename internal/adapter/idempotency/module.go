package idempotency

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/retailpos/internal/config"
	"github.com/polkiloo/retailpos/internal/usecase"
)

// Module provides the idempotency store used for order placement.
var Module = fx.Provide(newStore)

type storeParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newStore(p storeParams) usecase.IdempotencyStore {
	if p.Config.RedisAddr == "" {
		p.Logger.Info("redis address is empty, idempotency keys are kept in memory")
		return NewMemoryStore(p.Config.IdempotencyTTL)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         p.Config.RedisAddr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				p.Logger.Warn("redis is not reachable", slog.String("addr", p.Config.RedisAddr), slog.Any("error", err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return NewRedisStore(client, p.Config.IdempotencyTTL)
}
