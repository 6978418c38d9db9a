package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineRequest is one requested cart line.
type LineRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type Customer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// CreateOrderRequest opens a pending order and reserves its lines.
type CreateOrderRequest struct {
	Customer Customer      `json:"customer"`
	Notes    string        `json:"notes"`
	Items    []LineRequest `json:"items"`
}

// UpdateOrderRequest edits a pending order. Absent fields are left unchanged;
// a present items list replaces the cart.
type UpdateOrderRequest struct {
	Customer *Customer      `json:"customer,omitempty"`
	Notes    *string        `json:"notes,omitempty"`
	Items    *[]LineRequest `json:"items,omitempty"`
}

type OrderItemResponse struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse mirrors an order with its price snapshots.
type OrderResponse struct {
	ID          int64               `json:"id"`
	Number      string              `json:"order_number"`
	Customer    Customer            `json:"customer"`
	SalesRepID  int64               `json:"sales_rep_id"`
	Status      string              `json:"status"`
	Subtotal    decimal.Decimal     `json:"subtotal"`
	Tax         decimal.Decimal     `json:"tax"`
	Discount    decimal.Decimal     `json:"discount"`
	Total       decimal.Decimal     `json:"total"`
	Notes       string              `json:"notes,omitempty"`
	Items       []OrderItemResponse `json:"items"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	SubmittedAt *time.Time          `json:"submitted_at,omitempty"`
	PaidAt      *time.Time          `json:"paid_at,omitempty"`
}
