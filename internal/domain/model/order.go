package model

import (
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/retailpos/internal/domain/errors"
)

// OrderStatus describes the order lifecycle.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusSubmitted OrderStatus = "submitted"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"

	// orderStatusRemoved is the target of a delete; it is never persisted.
	orderStatusRemoved OrderStatus = ""
)

// OrderEvent is an action that may change the status of an order.
type OrderEvent string

const (
	OrderEventEdit     OrderEvent = "edit"
	OrderEventDiscount OrderEvent = "discount"
	OrderEventSubmit   OrderEvent = "submit"
	OrderEventCancel   OrderEvent = "cancel"
	OrderEventDelete   OrderEvent = "delete"
	OrderEventPay      OrderEvent = "pay"
)

var orderTransitions = map[OrderStatus]map[OrderEvent]OrderStatus{
	OrderStatusPending: {
		OrderEventEdit:     OrderStatusPending,
		OrderEventDiscount: OrderStatusPending,
		OrderEventSubmit:   OrderStatusSubmitted,
		OrderEventCancel:   OrderStatusCancelled,
		OrderEventDelete:   orderStatusRemoved,
	},
	OrderStatusSubmitted: {
		OrderEventPay: OrderStatusPaid,
	},
	OrderStatusPaid:      {},
	OrderStatusCancelled: {},
}

// NextOrderStatus resolves the status reached by applying event to from.
// Pairs missing from the transition table yield ErrInvalidTransition.
func NextOrderStatus(from OrderStatus, event OrderEvent) (OrderStatus, error) {
	next, ok := orderTransitions[from][event]
	if !ok {
		return from, domainErrors.ErrInvalidTransition
	}
	return next, nil
}

// Customer holds optional buyer contact details.
type Customer struct {
	Name  string
	Email string
	Phone string
}

// Order is a sale placed by a sales rep.
type Order struct {
	ID          int64
	Number      string
	Customer    Customer
	SalesRepID  int64
	Status      OrderStatus
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
	Notes       string
	Items       []OrderItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
	SubmittedAt *time.Time
	PaidAt      *time.Time
}

// OwnedBy reports whether the order belongs to the given sales rep.
func (o *Order) OwnedBy(userID int64) bool {
	return o.SalesRepID == userID
}

// Quantities returns reserved units per product.
func (o *Order) Quantities() map[int64]int {
	out := make(map[int64]int, len(o.Items))
	for _, it := range o.Items {
		out[it.ProductID] += it.Quantity
	}
	return out
}

// OrderItem is a single order line with its price snapshot.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// NewOrderItem builds a line and derives its subtotal.
func NewOrderItem(productID int64, qty int, unitPrice decimal.Decimal) OrderItem {
	return OrderItem{
		ProductID: productID,
		Quantity:  qty,
		UnitPrice: unitPrice,
		Subtotal:  unitPrice.Mul(decimal.NewFromInt(int64(qty))),
	}
}

// LineRequest is a requested product quantity in a cart.
type LineRequest struct {
	ProductID int64
	Quantity  int
}
