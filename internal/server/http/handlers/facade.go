package handlers

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/retailpos/internal/domain/model"
	"github.com/polkiloo/retailpos/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	CreateUser(ctx context.Context, actor model.Actor, login, password string, role model.Role) (*model.User, error)
	ResolveActor(ctx context.Context, token string) (model.Actor, error)
}

// CatalogFacade covers product management and stock intake.
type CatalogFacade interface {
	CreateProduct(ctx context.Context, actor model.Actor, details model.ProductDetails, initialQty int) (*model.Product, error)
	UpdateProduct(ctx context.Context, actor model.Actor, id int64, details model.ProductDetails) (*model.Product, error)
	ArchiveProduct(ctx context.Context, actor model.Actor, id int64) error
	RestockProduct(ctx context.Context, actor model.Actor, id int64, qty int) (*model.Product, error)
	Product(ctx context.Context, id int64) (*model.Product, error)
	Products(ctx context.Context, activeOnly bool) ([]model.Product, error)
	LowStock(ctx context.Context) ([]model.Product, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, actor model.Actor, in usecase.CreateOrderInput) (*model.Order, error)
	UpdateOrder(ctx context.Context, actor model.Actor, id int64, in usecase.UpdateOrderInput) (*model.Order, error)
	DeleteOrder(ctx context.Context, actor model.Actor, id int64) error
	SubmitOrder(ctx context.Context, actor model.Actor, id int64) (*model.Order, error)
	CancelOrder(ctx context.Context, actor model.Actor, id int64) (*model.Order, error)
	Order(ctx context.Context, actor model.Actor, id int64) (*model.Order, error)
	Orders(ctx context.Context, actor model.Actor, status *model.OrderStatus) ([]model.Order, error)
}

// DiscountFacade covers the discount request workflow.
type DiscountFacade interface {
	FileDiscount(ctx context.Context, actor model.Actor, orderID int64, amount decimal.Decimal, reason string) (*model.DiscountRequest, error)
	ApproveDiscount(ctx context.Context, actor model.Actor, id int64, notes string) (*model.DiscountRequest, error)
	RejectDiscount(ctx context.Context, actor model.Actor, id int64, notes string) (*model.DiscountRequest, error)
	Discount(ctx context.Context, actor model.Actor, id int64) (*model.DiscountRequest, error)
	Discounts(ctx context.Context, actor model.Actor, status *model.DiscountStatus) ([]model.DiscountRequest, error)
}

// PaymentFacade provides payment collection and receipts.
type PaymentFacade interface {
	CreatePayment(ctx context.Context, actor model.Actor, orderID int64, method model.PaymentMethod, notes string) (*model.Payment, error)
	ConfirmPayment(ctx context.Context, actor model.Actor, id int64) (*model.Payment, *model.Receipt, error)
	Receipt(ctx context.Context, actor model.Actor, paymentID int64) (*model.Receipt, error)
	Payments(ctx context.Context, actor model.Actor, orderID int64) ([]model.Payment, error)
}

// POSFacade aggregates the full set of operations used across handlers.
type POSFacade interface {
	AuthFacade
	CatalogFacade
	OrderFacade
	DiscountFacade
	PaymentFacade
	Ready(ctx context.Context) error
}
