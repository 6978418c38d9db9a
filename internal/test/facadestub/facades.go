// Package facadestub holds transport facade stubs. It imports usecase, so
// usecase tests must not import it.
package facadestub

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/retailpos/internal/domain/model"
	"github.com/polkiloo/retailpos/internal/usecase"
)

// Fixed timestamp used by facade stubs so responses are comparable.
var StubTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// AuthFacadeStub provides controllable behaviour for auth endpoints.
type AuthFacadeStub struct {
	RegisterFn     func(context.Context, string, string) (string, error)
	AuthenticateFn func(context.Context, string, string) (string, error)
	CreateUserFn   func(context.Context, model.Actor, string, string, model.Role) (*model.User, error)
	Actor          model.Actor
	ResolveErr     error
}

// Register returns configured token or default value.
func (s AuthFacadeStub) Register(ctx context.Context, login, password string) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, login, password)
	}
	return "token", nil
}

// Authenticate returns configured token or default value.
func (s AuthFacadeStub) Authenticate(ctx context.Context, login, password string) (string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, login, password)
	}
	return "token", nil
}

// CreateUser echoes the requested account.
func (s AuthFacadeStub) CreateUser(ctx context.Context, actor model.Actor, login, password string, role model.Role) (*model.User, error) {
	if s.CreateUserFn != nil {
		return s.CreateUserFn(ctx, actor, login, password, role)
	}
	return &model.User{ID: 7, Login: login, Role: role}, nil
}

// ResolveActor returns the configured actor, a sales rep by default.
func (s AuthFacadeStub) ResolveActor(context.Context, string) (model.Actor, error) {
	if s.ResolveErr != nil {
		return model.Actor{}, s.ResolveErr
	}
	if s.Actor.UserID == 0 {
		return model.Actor{UserID: 1, Role: model.RoleSalesRep}, nil
	}
	return s.Actor, nil
}

// CatalogFacadeStub simulates product operations.
type CatalogFacadeStub struct {
	CreateFn   func(context.Context, model.Actor, model.ProductDetails, int) (*model.Product, error)
	UpdateFn   func(context.Context, model.Actor, int64, model.ProductDetails) (*model.Product, error)
	ArchiveFn  func(context.Context, model.Actor, int64) error
	RestockFn  func(context.Context, model.Actor, int64, int) (*model.Product, error)
	ProductFn  func(context.Context, int64) (*model.Product, error)
	ProductsFn func(context.Context, bool) ([]model.Product, error)
	LowStockFn func(context.Context) ([]model.Product, error)
}

func stubProduct(id int64, details model.ProductDetails, qty int) *model.Product {
	return &model.Product{
		ID: id, SKU: details.SKU, Name: details.Name, Category: details.Category,
		Price: details.Price, Quantity: qty, MinStockLevel: details.MinStockLevel,
		IsActive: true, CreatedAt: StubTime, UpdatedAt: StubTime,
	}
}

func (s CatalogFacadeStub) CreateProduct(ctx context.Context, actor model.Actor, details model.ProductDetails, qty int) (*model.Product, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, actor, details, qty)
	}
	return stubProduct(1, details, qty), nil
}

func (s CatalogFacadeStub) UpdateProduct(ctx context.Context, actor model.Actor, id int64, details model.ProductDetails) (*model.Product, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, actor, id, details)
	}
	return stubProduct(id, details, 0), nil
}

func (s CatalogFacadeStub) ArchiveProduct(ctx context.Context, actor model.Actor, id int64) error {
	if s.ArchiveFn != nil {
		return s.ArchiveFn(ctx, actor, id)
	}
	return nil
}

func (s CatalogFacadeStub) RestockProduct(ctx context.Context, actor model.Actor, id int64, qty int) (*model.Product, error) {
	if s.RestockFn != nil {
		return s.RestockFn(ctx, actor, id, qty)
	}
	return stubProduct(id, model.ProductDetails{SKU: "SKU", Name: "Item", Price: decimal.NewFromInt(1)}, qty), nil
}

func (s CatalogFacadeStub) Product(ctx context.Context, id int64) (*model.Product, error) {
	if s.ProductFn != nil {
		return s.ProductFn(ctx, id)
	}
	return stubProduct(id, model.ProductDetails{SKU: "SKU", Name: "Item", Price: decimal.NewFromInt(1)}, 5), nil
}

func (s CatalogFacadeStub) Products(ctx context.Context, activeOnly bool) ([]model.Product, error) {
	if s.ProductsFn != nil {
		return s.ProductsFn(ctx, activeOnly)
	}
	return []model.Product{*stubProduct(1, model.ProductDetails{SKU: "SKU", Name: "Item", Price: decimal.NewFromInt(1)}, 5)}, nil
}

func (s CatalogFacadeStub) LowStock(ctx context.Context) ([]model.Product, error) {
	if s.LowStockFn != nil {
		return s.LowStockFn(ctx)
	}
	return nil, nil
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	CreateFn func(context.Context, model.Actor, usecase.CreateOrderInput) (*model.Order, error)
	UpdateFn func(context.Context, model.Actor, int64, usecase.UpdateOrderInput) (*model.Order, error)
	DeleteFn func(context.Context, model.Actor, int64) error
	SubmitFn func(context.Context, model.Actor, int64) (*model.Order, error)
	CancelFn func(context.Context, model.Actor, int64) (*model.Order, error)
	OrderFn  func(context.Context, model.Actor, int64) (*model.Order, error)
	OrdersFn func(context.Context, model.Actor, *model.OrderStatus) ([]model.Order, error)
}

// StubOrder builds an order with one line for the given owner.
func StubOrder(id, owner int64, status model.OrderStatus) *model.Order {
	return &model.Order{
		ID: id, Number: "ORD-20240301-0000000A", SalesRepID: owner, Status: status,
		Subtotal: decimal.NewFromInt(10), Tax: decimal.NewFromInt(1), Discount: decimal.Zero, Total: decimal.NewFromInt(11),
		Items:     []model.OrderItem{model.NewOrderItem(1, 2, decimal.NewFromInt(5))},
		CreatedAt: StubTime, UpdatedAt: StubTime,
	}
}

func (s OrderFacadeStub) CreateOrder(ctx context.Context, actor model.Actor, in usecase.CreateOrderInput) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, actor, in)
	}
	return StubOrder(1, actor.UserID, model.OrderStatusPending), nil
}

func (s OrderFacadeStub) UpdateOrder(ctx context.Context, actor model.Actor, id int64, in usecase.UpdateOrderInput) (*model.Order, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, actor, id, in)
	}
	return StubOrder(id, actor.UserID, model.OrderStatusPending), nil
}

func (s OrderFacadeStub) DeleteOrder(ctx context.Context, actor model.Actor, id int64) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, actor, id)
	}
	return nil
}

func (s OrderFacadeStub) SubmitOrder(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	if s.SubmitFn != nil {
		return s.SubmitFn(ctx, actor, id)
	}
	return StubOrder(id, actor.UserID, model.OrderStatusSubmitted), nil
}

func (s OrderFacadeStub) CancelOrder(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, actor, id)
	}
	return StubOrder(id, actor.UserID, model.OrderStatusCancelled), nil
}

func (s OrderFacadeStub) Order(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, actor, id)
	}
	return StubOrder(id, actor.UserID, model.OrderStatusPending), nil
}

func (s OrderFacadeStub) Orders(ctx context.Context, actor model.Actor, status *model.OrderStatus) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, actor, status)
	}
	return []model.Order{*StubOrder(1, actor.UserID, model.OrderStatusPending)}, nil
}

// DiscountFacadeStub simulates the discount workflow.
type DiscountFacadeStub struct {
	FileFn    func(context.Context, model.Actor, int64, decimal.Decimal, string) (*model.DiscountRequest, error)
	ApproveFn func(context.Context, model.Actor, int64, string) (*model.DiscountRequest, error)
	RejectFn  func(context.Context, model.Actor, int64, string) (*model.DiscountRequest, error)
	GetFn     func(context.Context, model.Actor, int64) (*model.DiscountRequest, error)
	ListFn    func(context.Context, model.Actor, *model.DiscountStatus) ([]model.DiscountRequest, error)
}

func stubDiscount(id int64, status model.DiscountStatus) *model.DiscountRequest {
	return &model.DiscountRequest{ID: id, OrderID: 1, RequestedBy: 1, Amount: decimal.NewFromInt(2), Status: status, CreatedAt: StubTime}
}

func (s DiscountFacadeStub) FileDiscount(ctx context.Context, actor model.Actor, orderID int64, amount decimal.Decimal, reason string) (*model.DiscountRequest, error) {
	if s.FileFn != nil {
		return s.FileFn(ctx, actor, orderID, amount, reason)
	}
	return stubDiscount(1, model.DiscountStatusPending), nil
}

func (s DiscountFacadeStub) ApproveDiscount(ctx context.Context, actor model.Actor, id int64, notes string) (*model.DiscountRequest, error) {
	if s.ApproveFn != nil {
		return s.ApproveFn(ctx, actor, id, notes)
	}
	return stubDiscount(id, model.DiscountStatusApproved), nil
}

func (s DiscountFacadeStub) RejectDiscount(ctx context.Context, actor model.Actor, id int64, notes string) (*model.DiscountRequest, error) {
	if s.RejectFn != nil {
		return s.RejectFn(ctx, actor, id, notes)
	}
	return stubDiscount(id, model.DiscountStatusRejected), nil
}

func (s DiscountFacadeStub) Discount(ctx context.Context, actor model.Actor, id int64) (*model.DiscountRequest, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, actor, id)
	}
	return stubDiscount(id, model.DiscountStatusPending), nil
}

func (s DiscountFacadeStub) Discounts(ctx context.Context, actor model.Actor, status *model.DiscountStatus) ([]model.DiscountRequest, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, actor, status)
	}
	return []model.DiscountRequest{*stubDiscount(1, model.DiscountStatusPending)}, nil
}

// PaymentFacadeStub simulates payments and receipts.
type PaymentFacadeStub struct {
	CreateFn   func(context.Context, model.Actor, int64, model.PaymentMethod, string) (*model.Payment, error)
	ConfirmFn  func(context.Context, model.Actor, int64) (*model.Payment, *model.Receipt, error)
	ReceiptFn  func(context.Context, model.Actor, int64) (*model.Receipt, error)
	PaymentsFn func(context.Context, model.Actor, int64) ([]model.Payment, error)
}

func stubPayment(id, orderID int64, method model.PaymentMethod, status model.PaymentStatus) *model.Payment {
	return &model.Payment{ID: id, OrderID: orderID, AccountantID: 4, Amount: decimal.NewFromInt(11), Method: method, Status: status, CreatedAt: StubTime}
}

// StubReceipt is the receipt returned by PaymentFacadeStub defaults.
func StubReceipt(paymentID int64) *model.Receipt {
	return &model.Receipt{ID: 1, PaymentID: paymentID, Number: "RCP-000001", FilePath: "receipts/RCP-000001.txt", GeneratedAt: StubTime}
}

func (s PaymentFacadeStub) CreatePayment(ctx context.Context, actor model.Actor, orderID int64, method model.PaymentMethod, notes string) (*model.Payment, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, actor, orderID, method, notes)
	}
	return stubPayment(1, orderID, method, model.PaymentStatusPending), nil
}

func (s PaymentFacadeStub) ConfirmPayment(ctx context.Context, actor model.Actor, id int64) (*model.Payment, *model.Receipt, error) {
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, actor, id)
	}
	return stubPayment(id, 1, model.PaymentMethodCash, model.PaymentStatusConfirmed), StubReceipt(id), nil
}

func (s PaymentFacadeStub) Receipt(ctx context.Context, actor model.Actor, paymentID int64) (*model.Receipt, error) {
	if s.ReceiptFn != nil {
		return s.ReceiptFn(ctx, actor, paymentID)
	}
	return StubReceipt(paymentID), nil
}

func (s PaymentFacadeStub) Payments(ctx context.Context, actor model.Actor, orderID int64) ([]model.Payment, error) {
	if s.PaymentsFn != nil {
		return s.PaymentsFn(ctx, actor, orderID)
	}
	return []model.Payment{*stubPayment(1, orderID, model.PaymentMethodCash, model.PaymentStatusPending)}, nil
}

// POSFacadeStub aggregates all facade stubs.
type POSFacadeStub struct {
	AuthFacadeStub
	CatalogFacadeStub
	OrderFacadeStub
	DiscountFacadeStub
	PaymentFacadeStub
	ReadyErr error
}

// Ready returns configured readiness error.
func (s POSFacadeStub) Ready(context.Context) error {
	return s.ReadyErr
}
