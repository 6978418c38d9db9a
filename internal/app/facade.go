package app

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"

	"github.com/polkiloo/retailpos/internal/domain/model"
	"github.com/polkiloo/retailpos/internal/usecase"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// POSFacade exposes the point-of-sale use cases to the transport layer.
type POSFacade struct {
	auth      *usecase.AuthUseCase
	catalog   *usecase.CatalogUseCase
	ledger    *usecase.InventoryLedger
	orders    *usecase.OrderEngine
	discounts *usecase.DiscountWorkflow
	payments  *usecase.PaymentEngine
	health    HealthChecker
}

type facadeParams struct {
	fx.In

	Auth      *usecase.AuthUseCase
	Catalog   *usecase.CatalogUseCase
	Ledger    *usecase.InventoryLedger
	Orders    *usecase.OrderEngine
	Discounts *usecase.DiscountWorkflow
	Payments  *usecase.PaymentEngine
	Health    HealthChecker `optional:"true"`
}

// NewPOSFacade groups the use cases behind one transport-facing API.
func NewPOSFacade(p facadeParams) *POSFacade {
	return &POSFacade{
		auth:      p.Auth,
		catalog:   p.Catalog,
		ledger:    p.Ledger,
		orders:    p.Orders,
		discounts: p.Discounts,
		payments:  p.Payments,
		health:    p.Health,
	}
}

func (f *POSFacade) Register(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password)
	return token, err
}

func (f *POSFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *POSFacade) CreateUser(ctx context.Context, actor model.Actor, login, password string, role model.Role) (*model.User, error) {
	return f.auth.CreateUser(ctx, actor, login, password, role)
}

func (f *POSFacade) ResolveActor(ctx context.Context, token string) (model.Actor, error) {
	return f.auth.ResolveActor(ctx, token)
}

func (f *POSFacade) CreateProduct(ctx context.Context, actor model.Actor, details model.ProductDetails, initialQty int) (*model.Product, error) {
	return f.catalog.CreateProduct(ctx, actor, details, initialQty)
}

func (f *POSFacade) UpdateProduct(ctx context.Context, actor model.Actor, id int64, details model.ProductDetails) (*model.Product, error) {
	return f.catalog.UpdateProduct(ctx, actor, id, details)
}

func (f *POSFacade) ArchiveProduct(ctx context.Context, actor model.Actor, id int64) error {
	return f.catalog.ArchiveProduct(ctx, actor, id)
}

func (f *POSFacade) RestockProduct(ctx context.Context, actor model.Actor, id int64, qty int) (*model.Product, error) {
	return f.ledger.Restock(ctx, actor, id, qty)
}

func (f *POSFacade) Product(ctx context.Context, id int64) (*model.Product, error) {
	return f.catalog.GetProduct(ctx, id)
}

func (f *POSFacade) Products(ctx context.Context, activeOnly bool) ([]model.Product, error) {
	return f.catalog.ListProducts(ctx, activeOnly)
}

func (f *POSFacade) LowStock(ctx context.Context) ([]model.Product, error) {
	return f.catalog.LowStock(ctx)
}

func (f *POSFacade) CreateOrder(ctx context.Context, actor model.Actor, in usecase.CreateOrderInput) (*model.Order, error) {
	return f.orders.CreateOrder(ctx, actor, in)
}

func (f *POSFacade) UpdateOrder(ctx context.Context, actor model.Actor, id int64, in usecase.UpdateOrderInput) (*model.Order, error) {
	return f.orders.UpdateOrder(ctx, actor, id, in)
}

func (f *POSFacade) DeleteOrder(ctx context.Context, actor model.Actor, id int64) error {
	return f.orders.DeleteOrder(ctx, actor, id)
}

func (f *POSFacade) SubmitOrder(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	return f.orders.SubmitOrder(ctx, actor, id)
}

func (f *POSFacade) CancelOrder(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	return f.orders.CancelOrder(ctx, actor, id)
}

func (f *POSFacade) Order(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	return f.orders.GetOrder(ctx, actor, id)
}

func (f *POSFacade) Orders(ctx context.Context, actor model.Actor, status *model.OrderStatus) ([]model.Order, error) {
	return f.orders.ListOrders(ctx, actor, status)
}

func (f *POSFacade) FileDiscount(ctx context.Context, actor model.Actor, orderID int64, amount decimal.Decimal, reason string) (*model.DiscountRequest, error) {
	return f.discounts.FileRequest(ctx, actor, orderID, amount, reason)
}

func (f *POSFacade) ApproveDiscount(ctx context.Context, actor model.Actor, id int64, notes string) (*model.DiscountRequest, error) {
	return f.discounts.Approve(ctx, actor, id, notes)
}

func (f *POSFacade) RejectDiscount(ctx context.Context, actor model.Actor, id int64, notes string) (*model.DiscountRequest, error) {
	return f.discounts.Reject(ctx, actor, id, notes)
}

func (f *POSFacade) Discount(ctx context.Context, actor model.Actor, id int64) (*model.DiscountRequest, error) {
	return f.discounts.GetRequest(ctx, actor, id)
}

func (f *POSFacade) Discounts(ctx context.Context, actor model.Actor, status *model.DiscountStatus) ([]model.DiscountRequest, error) {
	return f.discounts.ListRequests(ctx, actor, status)
}

func (f *POSFacade) CreatePayment(ctx context.Context, actor model.Actor, orderID int64, method model.PaymentMethod, notes string) (*model.Payment, error) {
	return f.payments.CreatePayment(ctx, actor, orderID, method, notes)
}

func (f *POSFacade) ConfirmPayment(ctx context.Context, actor model.Actor, id int64) (*model.Payment, *model.Receipt, error) {
	return f.payments.ConfirmPayment(ctx, actor, id)
}

func (f *POSFacade) Receipt(ctx context.Context, actor model.Actor, paymentID int64) (*model.Receipt, error) {
	return f.payments.GetReceipt(ctx, actor, paymentID)
}

func (f *POSFacade) Payments(ctx context.Context, actor model.Actor, orderID int64) ([]model.Payment, error) {
	return f.payments.ListPayments(ctx, actor, orderID)
}

// Ready reports store reachability for the health endpoint.
func (f *POSFacade) Ready(ctx context.Context) error {
	if f.health == nil {
		return nil
	}
	return f.health.HealthCheck(ctx)
}
