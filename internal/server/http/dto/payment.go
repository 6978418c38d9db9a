package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentRequest struct {
	Method string `json:"payment_method"`
	Notes  string `json:"notes"`
}

type PaymentResponse struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"order_id"`
	AccountantID int64           `json:"accountant_id"`
	Amount       decimal.Decimal `json:"amount"`
	Method       string          `json:"payment_method"`
	Status       string          `json:"payment_status"`
	ConfirmedAt  *time.Time      `json:"confirmed_at,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type ReceiptResponse struct {
	ID          int64     `json:"id"`
	PaymentID   int64     `json:"payment_id"`
	Number      string    `json:"receipt_number"`
	FilePath    string    `json:"file_path"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ConfirmationResponse is returned once a payment is confirmed.
type ConfirmationResponse struct {
	Payment PaymentResponse `json:"payment"`
	Receipt ReceiptResponse `json:"receipt"`
}
