package usecase

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/retailpos/internal/config"
	"github.com/polkiloo/retailpos/internal/domain/model"
)

// Module provides core business use cases to the fx container.
var Module = fx.Options(
	fx.Provide(
		NewAuthUseCase,
		NewPricing,
		NewInventoryLedger,
		NewOrderEngine,
		NewDiscountWorkflow,
		NewPaymentEngine,
		NewCatalogUseCase,
	),
	fx.Invoke(registerAdminBootstrap),
)

func registerAdminBootstrap(lc fx.Lifecycle, cfg *config.Config, auth *AuthUseCase, logger *slog.Logger) {
	if cfg.AdminLogin == "" || cfg.AdminPassword == "" {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			user, created, err := auth.EnsureUser(ctx, cfg.AdminLogin, cfg.AdminPassword, model.RoleAdmin)
			if err != nil {
				return err
			}
			if created {
				logger.Info("admin account created", slog.Int64("user_id", user.ID), slog.String("login", user.Login))
			}
			return nil
		},
	})
}
