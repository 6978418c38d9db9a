package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/retailpos/internal/adapter/idempotency"
	"github.com/polkiloo/retailpos/internal/adapter/kafka"
	"github.com/polkiloo/retailpos/internal/adapter/receipt"
	"github.com/polkiloo/retailpos/internal/app"
	"github.com/polkiloo/retailpos/internal/config"
	"github.com/polkiloo/retailpos/internal/logger"
	"github.com/polkiloo/retailpos/internal/metrics"
	"github.com/polkiloo/retailpos/internal/pkg/auth"
	"github.com/polkiloo/retailpos/internal/server/http/router"
	"github.com/polkiloo/retailpos/internal/storage"
	"github.com/polkiloo/retailpos/internal/usecase"
)

// Module composes the whole application graph; opts may replace any part of it.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		auth.Module,
		storage.Module,
		idempotency.Module,
		receipt.Module,
		kafka.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
