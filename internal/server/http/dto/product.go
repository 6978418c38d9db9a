package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductRequest carries catalog fields for create and update.
// InitialQuantity is only honoured on create.
type ProductRequest struct {
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Price           decimal.Decimal `json:"price"`
	MinStockLevel   int             `json:"min_stock_level"`
	InitialQuantity int             `json:"initial_quantity,omitempty"`
}

// RestockRequest adds delivered units to a product.
type RestockRequest struct {
	Quantity int `json:"quantity"`
}

type ProductResponse struct {
	ID            int64           `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Category      string          `json:"category,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	MinStockLevel int             `json:"min_stock_level"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
