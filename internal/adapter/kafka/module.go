package kafka

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/retailpos/internal/config"
	"github.com/polkiloo/retailpos/internal/worker"
)

// Module provides the event publisher used by the outbox relay.
var Module = fx.Provide(newPublisher)

type publisherParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

type closingPublisher interface {
	worker.Publisher
	Close() error
}

func newPublisher(p publisherParams) worker.Publisher {
	var pub closingPublisher
	if len(p.Config.KafkaBrokers) == 0 {
		p.Logger.Info("no kafka brokers configured, events are only logged")
		pub = NewLogPublisher(p.Logger)
	} else {
		pub = NewPublisher(NewWriter(p.Config.KafkaBrokers))
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	})
	return pub
}
