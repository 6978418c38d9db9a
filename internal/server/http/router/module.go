package router

import (
	"go.uber.org/fx"

	"github.com/polkiloo/retailpos/internal/app"
	"github.com/polkiloo/retailpos/internal/server/http/handlers"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Provide(
	func(f *app.POSFacade) handlers.POSFacade { return f },
	Setup,
)
