package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MaxQuantity bounds stock levels and line quantities. It matches the INTEGER columns.
const MaxQuantity = math.MaxInt32

// Product is a catalog entry together with its authoritative stock level.
type Product struct {
	ID            int64
	SKU           string
	Name          string
	Category      string
	Price         decimal.Decimal
	Quantity      int
	MinStockLevel int
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LowOnStock reports whether the product reached its reorder threshold.
func (p Product) LowOnStock() bool {
	return p.Quantity <= p.MinStockLevel
}

// ProductDetails carries the catalog-managed fields of a product.
// Quantity is absent: only the inventory ledger changes it.
type ProductDetails struct {
	SKU           string
	Name          string
	Category      string
	Price         decimal.Decimal
	MinStockLevel int
}
