package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
}

// ReviewRequest carries optional reviewer notes for approve and reject.
type ReviewRequest struct {
	Notes string `json:"notes"`
}

type DiscountResponse struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	RequestedBy int64           `json:"requested_by"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason,omitempty"`
	Status      string          `json:"status"`
	ReviewedBy  *int64          `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time      `json:"reviewed_at,omitempty"`
	AdminNotes  string          `json:"admin_notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
