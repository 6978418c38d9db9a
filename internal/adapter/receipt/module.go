package receipt

import (
	"go.uber.org/fx"

	"github.com/polkiloo/retailpos/internal/config"
	"github.com/polkiloo/retailpos/internal/usecase"
)

// Module provides the receipt renderer.
var Module = fx.Provide(func(cfg *config.Config) usecase.ReceiptRenderer {
	return NewFileRenderer(cfg.ReceiptDir)
})
