package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus describes payment confirmation state.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// PaymentMethod is how the customer settled the order.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodPOS      PaymentMethod = "pos"
)

// Valid reports whether m is an accepted payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodPOS:
		return true
	}
	return false
}

// Payment records an accountant's collection attempt for a submitted order.
type Payment struct {
	ID           int64
	OrderID      int64
	AccountantID int64
	Amount       decimal.Decimal
	Method       PaymentMethod
	Status       PaymentStatus
	ConfirmedAt  *time.Time
	Notes        string
	CreatedAt    time.Time
}

// Receipt is the single proof of a confirmed payment.
type Receipt struct {
	ID          int64
	PaymentID   int64
	Number      string
	FilePath    string
	GeneratedAt time.Time
}
