package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/retailpos/internal/domain/errors"
	"github.com/polkiloo/retailpos/internal/domain/model"
	"github.com/polkiloo/retailpos/internal/domain/repository"
	"github.com/polkiloo/retailpos/internal/metrics"
)

// InventoryLedger is the only writer of product quantities.
type InventoryLedger struct {
	store   repository.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewInventoryLedger constructs InventoryLedger.
func NewInventoryLedger(store repository.Store, logger *slog.Logger, m *metrics.Metrics) *InventoryLedger {
	return &InventoryLedger{store: store, logger: logger, metrics: m, now: time.Now}
}

// Reserve takes qty units of a product.
func (l *InventoryLedger) Reserve(ctx context.Context, productID int64, qty int) (int, error) {
	if !validQuantity(qty) {
		return 0, domainErrors.ErrInvalidInput
	}
	var remaining int
	err := l.store.WithinTransaction(ctx, func(tx repository.Factory) error {
		products, err := tx.Products().GetByIDs(ctx, []int64{productID})
		if err != nil {
			return err
		}
		if err := l.apply(ctx, tx, map[int64]int{productID: qty}, products); err != nil {
			return err
		}
		remaining, err = currentQuantity(ctx, tx, productID)
		return err
	})
	return remaining, err
}

// Release returns qty units of a product.
func (l *InventoryLedger) Release(ctx context.Context, productID int64, qty int) (int, error) {
	if !validQuantity(qty) {
		return 0, domainErrors.ErrInvalidInput
	}
	var remaining int
	err := l.store.WithinTransaction(ctx, func(tx repository.Factory) error {
		if err := l.apply(ctx, tx, map[int64]int{productID: -qty}, nil); err != nil {
			return err
		}
		var err error
		remaining, err = currentQuantity(ctx, tx, productID)
		return err
	})
	return remaining, err
}

// ReserveAll reserves every line or none of them.
func (l *InventoryLedger) ReserveAll(ctx context.Context, lines []model.LineRequest) error {
	deltas, err := mergeLines(lines)
	if err != nil {
		return err
	}
	return l.store.WithinTransaction(ctx, func(tx repository.Factory) error {
		products, err := tx.Products().GetByIDs(ctx, sortedIDs(deltas))
		if err != nil {
			return err
		}
		return l.apply(ctx, tx, deltas, products)
	})
}

// Restock adds delivered units to a product.
func (l *InventoryLedger) Restock(ctx context.Context, actor model.Actor, productID int64, qty int) (*model.Product, error) {
	if err := authorize(actor, reviewerRoles...); err != nil {
		return nil, err
	}
	if !validQuantity(qty) {
		return nil, domainErrors.ErrInvalidInput
	}

	var product *model.Product
	err := l.store.WithinTransaction(ctx, func(tx repository.Factory) error {
		var err error
		product, err = tx.Products().GetByID(ctx, productID)
		if err != nil {
			return err
		}
		return l.restock(ctx, tx, product, qty)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("product restocked", slog.Int64("product_id", productID), slog.Int("added", qty), slog.Int("quantity", product.Quantity))
	return product, nil
}

func (l *InventoryLedger) restock(ctx context.Context, tx repository.Factory, product *model.Product, qty int) error {
	if qty > model.MaxQuantity-product.Quantity {
		return domainErrors.ErrInvalidInput
	}
	remaining, err := tx.Products().Release(ctx, product.ID, qty)
	if err != nil {
		return err
	}
	product.Quantity = remaining
	l.metrics.UnitsReleased.Add(float64(qty))

	return emit(ctx, tx.Outbox(), model.TopicInventoryRestocked, product.ID, stockPayload{
		ProductID:     product.ID,
		SKU:           product.SKU,
		Quantity:      remaining,
		MinStockLevel: product.MinStockLevel,
		Added:         qty,
	}, l.now())
}

// apply moves stock by the signed deltas in ascending product id order.
// Positive values reserve, negative values release. When a step fails the
// steps already applied are reverted before the error is returned.
// Products that will be reserved must be present and active in products.
func (l *InventoryLedger) apply(ctx context.Context, tx repository.Factory, deltas map[int64]int, products map[int64]model.Product) error {
	applied := make([]int64, 0, len(deltas))
	for _, id := range sortedIDs(deltas) {
		delta := deltas[id]
		if delta == 0 {
			continue
		}
		if err := l.step(ctx, tx, id, delta, products); err != nil {
			l.revert(ctx, tx, deltas, applied)
			var stockErr *domainErrors.StockError
			if errors.As(err, &stockErr) {
				l.metrics.StockRejections.Inc()
			}
			return err
		}
		applied = append(applied, id)
	}

	for _, id := range applied {
		if d := deltas[id]; d > 0 {
			l.metrics.UnitsReserved.Add(float64(d))
		} else {
			l.metrics.UnitsReleased.Add(float64(-d))
		}
	}
	return nil
}

func (l *InventoryLedger) step(ctx context.Context, tx repository.Factory, id int64, delta int, products map[int64]model.Product) error {
	if delta < 0 {
		_, err := tx.Products().Release(ctx, id, -delta)
		if err != nil {
			return fmt.Errorf("release product %d: %w", id, err)
		}
		return nil
	}

	product, ok := products[id]
	if !ok || !product.IsActive {
		return fmt.Errorf("product %d: %w", id, domainErrors.ErrNotFound)
	}
	remaining, err := tx.Products().Reserve(ctx, id, delta)
	if err != nil {
		return err
	}
	if remaining > product.MinStockLevel {
		return nil
	}
	return emit(ctx, tx.Outbox(), model.TopicInventoryLowStock, id, stockPayload{
		ProductID:     id,
		SKU:           product.SKU,
		Quantity:      remaining,
		MinStockLevel: product.MinStockLevel,
	}, l.now())
}

func (l *InventoryLedger) revert(ctx context.Context, tx repository.Factory, deltas map[int64]int, applied []int64) {
	for i := len(applied) - 1; i >= 0; i-- {
		id := applied[i]
		var err error
		if d := deltas[id]; d > 0 {
			_, err = tx.Products().Release(ctx, id, d)
		} else {
			_, err = tx.Products().Reserve(ctx, id, -d)
		}
		if err != nil {
			l.logger.Warn("stock compensation failed", slog.Int64("product_id", id), slog.Any("error", err))
		}
	}
}

func currentQuantity(ctx context.Context, tx repository.Factory, productID int64) (int, error) {
	p, err := tx.Products().GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	return p.Quantity, nil
}
