package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/retailpos/internal/metrics"
	"github.com/polkiloo/retailpos/internal/server/http/handlers"
	"github.com/polkiloo/retailpos/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.POSFacade, logger *slog.Logger, m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.Instrument(m))
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithDecompressFn(gzip.DefaultDecompressHandle)))

	engine.GET("/healthz", handlers.Health(facade))
	engine.GET("/metrics", gin.WrapH(m.Handler()))

	authHandler := handlers.NewAuthHandler(facade)
	productHandler := handlers.NewProductHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	discountHandler := handlers.NewDiscountHandler(facade)
	paymentHandler := handlers.NewPaymentHandler(facade)

	api := engine.Group("/api")
	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(middleware.AuthRequired(facade))
	secured.POST("/users", authHandler.CreateUser)

	products := secured.Group("/products")
	products.GET("", productHandler.List)
	products.POST("", productHandler.Create)
	products.GET("/low-stock", productHandler.LowStock)
	products.GET("/:id", productHandler.Get)
	products.PUT("/:id", productHandler.Update)
	products.POST("/:id/archive", productHandler.Archive)
	products.POST("/:id/restock", productHandler.Restock)

	orders := secured.Group("/orders")
	orders.POST("", orderHandler.Create)
	orders.GET("", orderHandler.List)
	orders.GET("/:id", orderHandler.Get)
	orders.PUT("/:id", orderHandler.Update)
	orders.DELETE("/:id", orderHandler.Delete)
	orders.POST("/:id/submit", orderHandler.Submit)
	orders.POST("/:id/cancel", orderHandler.Cancel)
	orders.POST("/:id/discounts", discountHandler.File)
	orders.POST("/:id/payments", paymentHandler.Create)
	orders.GET("/:id/payments", paymentHandler.List)

	discounts := secured.Group("/discounts")
	discounts.GET("", discountHandler.List)
	discounts.GET("/:id", discountHandler.Get)
	discounts.POST("/:id/approve", discountHandler.Approve)
	discounts.POST("/:id/reject", discountHandler.Reject)

	payments := secured.Group("/payments")
	payments.POST("/:id/confirm", paymentHandler.Confirm)
	payments.GET("/:id/receipt", paymentHandler.Receipt)

	return engine
}
