package storage

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/retailpos/internal/config"
	"github.com/polkiloo/retailpos/internal/domain/repository"
	"github.com/polkiloo/retailpos/internal/storage/memory"
	"github.com/polkiloo/retailpos/internal/storage/postgres"
)

// Backend is a transactional store with a lifecycle.
type Backend interface {
	repository.Store
	HealthCheck(ctx context.Context) error
	Close()
}

// Module wires the storage backend chosen by DATABASE_URI and its repositories.
var Module = fx.Options(
	fx.Provide(newBackend),
	fx.Provide(
		func(b Backend) repository.Store { return b },
		func(b Backend) repository.UserRepository { return b.Users() },
	),
	fx.Invoke(registerLifecycle),
)

var openPostgres = func(ctx context.Context, dsn string, logger *slog.Logger) (Backend, error) {
	s, err := postgres.New(ctx, dsn, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}

type backendParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newBackend(p backendParams) (Backend, error) {
	if p.Config.DatabaseURI == "" {
		p.Logger.Warn("database uri is empty, state is kept in memory")
		return memory.New(), nil
	}
	return openPostgres(p.Ctx, p.Config.DatabaseURI, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, backend Backend) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			backend.Close()
			return nil
		},
	})
}
