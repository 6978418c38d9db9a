package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/retailpos/internal/config"
	"github.com/polkiloo/retailpos/internal/domain/model"
)

// Pricing derives order totals from item lines.
type Pricing struct {
	TaxRate decimal.Decimal
}

// NewPricing reads the tax rate from configuration.
func NewPricing(cfg *config.Config) Pricing {
	return Pricing{TaxRate: cfg.TaxRate}
}

// Apply recomputes subtotal, tax and total of the order. The discount already
// granted is kept as is.
func (p Pricing) Apply(order *model.Order) {
	subtotal := decimal.Zero
	for i := range order.Items {
		item := &order.Items[i]
		item.Subtotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(item.Subtotal)
	}

	order.Subtotal = subtotal
	order.Tax = subtotal.Mul(p.TaxRate).Round(2)
	order.Total = order.Subtotal.Add(order.Tax).Sub(order.Discount)
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), strings.ToUpper(suffix))
}

func formatReceiptNumber(seq int64) string {
	return fmt.Sprintf("RCP-%06d", seq)
}
