package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/retailpos/internal/domain/errors"
	"github.com/polkiloo/retailpos/internal/domain/model"
	"github.com/polkiloo/retailpos/internal/domain/repository"
	"github.com/polkiloo/retailpos/internal/metrics"
)

// IdempotencyStore remembers which order a client-supplied key produced.
//
// Claim returns fresh=true when the caller now owns the key, or the id of the
// order already created under it. A key claimed but not yet completed yields
// ErrIdempotencyInFlight.
type IdempotencyStore interface {
	Claim(ctx context.Context, key string) (orderID int64, fresh bool, err error)
	Complete(ctx context.Context, key string, orderID int64) error
	Release(ctx context.Context, key string) error
}

// CreateOrderInput describes a new cart.
type CreateOrderInput struct {
	Customer       model.Customer
	Notes          string
	Items          []model.LineRequest
	IdempotencyKey string
}

// UpdateOrderInput changes a pending order. Nil fields stay as they are.
type UpdateOrderInput struct {
	Items    []model.LineRequest
	Customer *model.Customer
	Notes    *string
}

// OrderEngine owns the order lifecycle and its status transitions.
type OrderEngine struct {
	store   repository.Store
	ledger  *InventoryLedger
	pricing Pricing
	idem    IdempotencyStore
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewOrderEngine constructs OrderEngine.
func NewOrderEngine(
	store repository.Store,
	ledger *InventoryLedger,
	pricing Pricing,
	idem IdempotencyStore,
	logger *slog.Logger,
	m *metrics.Metrics,
) *OrderEngine {
	return &OrderEngine{
		store:   store,
		ledger:  ledger,
		pricing: pricing,
		idem:    idem,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// CreateOrder reserves stock for every line and persists a pending order.
// A repeated idempotency key from the same user returns the order it created.
func (e *OrderEngine) CreateOrder(ctx context.Context, actor model.Actor, in CreateOrderInput) (*model.Order, error) {
	if err := authorize(actor, orderingRoles...); err != nil {
		return nil, err
	}
	lines, err := mergeLines(in.Items)
	if err != nil {
		return nil, err
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || e.idem == nil {
		return e.createOrder(ctx, actor, in, lines)
	}

	scoped := fmt.Sprintf("%d:%s", actor.UserID, key)
	orderID, fresh, err := e.idem.Claim(ctx, scoped)
	if err != nil {
		return nil, err
	}
	if !fresh {
		return e.store.Orders().GetByID(ctx, orderID)
	}

	order, err := e.createOrder(ctx, actor, in, lines)
	if err != nil {
		if relErr := e.idem.Release(ctx, scoped); relErr != nil {
			e.logger.Warn("release idempotency key", slog.String("key", scoped), slog.Any("error", relErr))
		}
		return nil, err
	}
	if err := e.idem.Complete(ctx, scoped, order.ID); err != nil {
		e.logger.Warn("complete idempotency key", slog.String("key", scoped), slog.Any("error", err))
	}
	return order, nil
}

func (e *OrderEngine) createOrder(ctx context.Context, actor model.Actor, in CreateOrderInput, lines map[int64]int) (*model.Order, error) {
	now := e.now()
	order := &model.Order{
		Number:     newOrderNumber(now),
		Customer:   in.Customer,
		SalesRepID: actor.UserID,
		Status:     model.OrderStatusPending,
		Discount:   decimal.Zero,
		Notes:      in.Notes,
	}

	err := e.store.WithinTransaction(ctx, func(tx repository.Factory) error {
		products, err := tx.Products().GetByIDs(ctx, sortedIDs(lines))
		if err != nil {
			return err
		}
		if err := e.ledger.apply(ctx, tx, lines, products); err != nil {
			return err
		}

		for _, id := range sortedIDs(lines) {
			order.Items = append(order.Items, model.NewOrderItem(id, lines[id], products[id].Price))
		}
		e.pricing.Apply(order)

		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}
		return emit(ctx, tx.Outbox(), model.TopicOrderCreated, order.ID, newOrderPayload(order), now)
	})
	if err != nil {
		return nil, err
	}

	e.transitioned("create", order)
	return order, nil
}

// UpdateOrder edits a pending order owned by the actor. Stock moves by the
// difference between the old and the new quantities; if any step fails the
// order and the stock stay as they were.
func (e *OrderEngine) UpdateOrder(ctx context.Context, actor model.Actor, orderID int64, in UpdateOrderInput) (*model.Order, error) {
	var wanted map[int64]int
	if in.Items != nil {
		var err error
		if wanted, err = mergeLines(in.Items); err != nil {
			return nil, err
		}
	}

	var order *model.Order
	err := e.store.WithinTransaction(ctx, func(tx repository.Factory) error {
		var err error
		order, err = e.lockOwned(ctx, tx, actor, orderID, model.OrderEventEdit)
		if err != nil {
			return err
		}

		if wanted != nil {
			if err := e.replaceItems(ctx, tx, order, wanted); err != nil {
				return err
			}
		}
		if in.Customer != nil {
			order.Customer = *in.Customer
		}
		if in.Notes != nil {
			order.Notes = *in.Notes
		}

		e.pricing.Apply(order)
		if order.Total.IsNegative() {
			return fmt.Errorf("totals below applied discount %s: %w", order.Discount, domainErrors.ErrInvalidAmount)
		}
		if err := tx.Orders().UpdateTotals(ctx, order); err != nil {
			return err
		}
		return emit(ctx, tx.Outbox(), model.TopicOrderUpdated, order.ID, newOrderPayload(order), e.now())
	})
	if err != nil {
		return nil, err
	}

	e.transitioned(string(model.OrderEventEdit), order)
	return order, nil
}

func (e *OrderEngine) replaceItems(ctx context.Context, tx repository.Factory, order *model.Order, wanted map[int64]int) error {
	current := order.Quantities()
	snapshot := make(map[int64]decimal.Decimal, len(order.Items))
	for _, it := range order.Items {
		if _, ok := snapshot[it.ProductID]; !ok {
			snapshot[it.ProductID] = it.UnitPrice
		}
	}

	deltas := make(map[int64]int, len(wanted)+len(current))
	for id, qty := range wanted {
		deltas[id] = qty - current[id]
	}
	for id, qty := range current {
		if _, ok := wanted[id]; !ok {
			deltas[id] = -qty
		}
	}

	var added []int64
	for id, d := range deltas {
		if d > 0 {
			added = append(added, id)
		}
	}
	products, err := tx.Products().GetByIDs(ctx, added)
	if err != nil {
		return err
	}
	if err := e.ledger.apply(ctx, tx, deltas, products); err != nil {
		return err
	}

	items := make([]model.OrderItem, 0, len(wanted))
	for _, id := range sortedIDs(wanted) {
		price, ok := snapshot[id]
		if !ok {
			price = products[id].Price
		}
		items = append(items, model.NewOrderItem(id, wanted[id], price))
	}

	stored, err := tx.Orders().ReplaceItems(ctx, order.ID, items)
	if err != nil {
		return err
	}
	order.Items = stored
	return nil
}

// DeleteOrder removes a pending order and gives its stock back.
func (e *OrderEngine) DeleteOrder(ctx context.Context, actor model.Actor, orderID int64) error {
	var order *model.Order
	err := e.store.WithinTransaction(ctx, func(tx repository.Factory) error {
		var err error
		order, err = e.lockOwned(ctx, tx, actor, orderID, model.OrderEventDelete)
		if err != nil {
			return err
		}
		if err := e.ledger.apply(ctx, tx, negate(order.Quantities()), nil); err != nil {
			return err
		}
		if err := tx.Discounts().DeleteByOrder(ctx, order.ID); err != nil {
			return err
		}
		if err := tx.Orders().Delete(ctx, order.ID); err != nil {
			return err
		}
		return emit(ctx, tx.Outbox(), model.TopicOrderDeleted, order.ID, newOrderPayload(order), e.now())
	})
	if err != nil {
		return err
	}

	e.transitioned(string(model.OrderEventDelete), order)
	return nil
}

// CancelOrder gives the stock of a pending order back and keeps the order as
// cancelled. Pending discount requests against it are rejected.
func (e *OrderEngine) CancelOrder(ctx context.Context, actor model.Actor, orderID int64) (*model.Order, error) {
	var order *model.Order
	err := e.store.WithinTransaction(ctx, func(tx repository.Factory) error {
		var err error
		order, err = e.lockOwned(ctx, tx, actor, orderID, model.OrderEventCancel)
		if err != nil {
			return err
		}
		if err := e.ledger.apply(ctx, tx, negate(order.Quantities()), nil); err != nil {
			return err
		}

		now := e.now()
		rejected, err := tx.Discounts().RejectPendingByOrder(ctx, order.ID, model.DiscountReview{
			Status:     model.DiscountStatusRejected,
			ReviewedBy: actor.UserID,
			ReviewedAt: now,
			Notes:      "order cancelled",
		})
		if err != nil {
			return err
		}
		if rejected > 0 {
			e.logger.Info("pending discount requests rejected", slog.Int64("order_id", order.ID), slog.Int64("count", rejected))
		}

		if err := tx.Orders().UpdateStatus(ctx, order.ID, model.OrderStatusCancelled); err != nil {
			return err
		}
		order.Status = model.OrderStatusCancelled
		return emit(ctx, tx.Outbox(), model.TopicOrderCancelled, order.ID, newOrderPayload(order), now)
	})
	if err != nil {
		return nil, err
	}

	e.transitioned(string(model.OrderEventCancel), order)
	return order, nil
}

// SubmitOrder hands a pending order over for payment. Stock is unchanged.
func (e *OrderEngine) SubmitOrder(ctx context.Context, actor model.Actor, orderID int64) (*model.Order, error) {
	var order *model.Order
	err := e.store.WithinTransaction(ctx, func(tx repository.Factory) error {
		var err error
		order, err = e.lockOwned(ctx, tx, actor, orderID, model.OrderEventSubmit)
		if err != nil {
			return err
		}
		if err := tx.Orders().UpdateStatus(ctx, order.ID, model.OrderStatusSubmitted); err != nil {
			return err
		}

		now := e.now()
		order.Status = model.OrderStatusSubmitted
		order.SubmittedAt = &now
		return emit(ctx, tx.Outbox(), model.TopicOrderSubmitted, order.ID, newOrderPayload(order), now)
	})
	if err != nil {
		return nil, err
	}

	e.transitioned(string(model.OrderEventSubmit), order)
	return order, nil
}

// GetOrder returns an order with its items. Sales reps only see their own.
func (e *OrderEngine) GetOrder(ctx context.Context, actor model.Actor, orderID int64) (*model.Order, error) {
	if actor.UserID <= 0 || !actor.Role.Valid() {
		return nil, domainErrors.ErrForbidden
	}
	order, err := e.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actor.Is(model.RoleSalesRep) && !order.OwnedBy(actor.UserID) {
		return nil, domainErrors.ErrForbidden
	}
	return order, nil
}

// ListOrders returns orders newest first, optionally filtered by status.
func (e *OrderEngine) ListOrders(ctx context.Context, actor model.Actor, status *model.OrderStatus) ([]model.Order, error) {
	if actor.UserID <= 0 || !actor.Role.Valid() {
		return nil, domainErrors.ErrForbidden
	}
	filter := repository.OrderFilter{Status: status}
	if actor.Is(model.RoleSalesRep) {
		filter.SalesRepID = &actor.UserID
	}
	return e.store.Orders().List(ctx, filter)
}

// applyDiscount lowers the total of a locked pending order. Callers hold the
// order row lock within tx.
func (e *OrderEngine) applyDiscount(ctx context.Context, tx repository.Factory, order *model.Order, amount decimal.Decimal) error {
	if _, err := model.NextOrderStatus(order.Status, model.OrderEventDiscount); err != nil {
		return fmt.Errorf("order %d is %s: %w", order.ID, order.Status, domainErrors.ErrInvalidOrderState)
	}
	if !amount.IsPositive() || amount.GreaterThan(order.Total) {
		return domainErrors.ErrInvalidAmount
	}

	order.Discount = order.Discount.Add(amount)
	order.Total = order.Total.Sub(amount)
	if err := tx.Orders().UpdateTotals(ctx, order); err != nil {
		return err
	}
	return emit(ctx, tx.Outbox(), model.TopicOrderUpdated, order.ID, newOrderPayload(order), e.now())
}

// markPaid moves a locked submitted order to paid.
func (e *OrderEngine) markPaid(ctx context.Context, tx repository.Factory, order *model.Order, at time.Time) error {
	next, err := model.NextOrderStatus(order.Status, model.OrderEventPay)
	if err != nil {
		return err
	}
	if err := tx.Orders().UpdateStatus(ctx, order.ID, next); err != nil {
		return err
	}
	order.Status = next
	order.PaidAt = &at
	return emit(ctx, tx.Outbox(), model.TopicOrderPaid, order.ID, newOrderPayload(order), at)
}

// lockOwned locks the order row and checks that the actor owns it and that
// event is allowed from its current status.
func (e *OrderEngine) lockOwned(ctx context.Context, tx repository.Factory, actor model.Actor, orderID int64, event model.OrderEvent) (*model.Order, error) {
	if err := authorize(actor, orderingRoles...); err != nil {
		return nil, err
	}
	order, err := tx.Orders().GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.OwnedBy(actor.UserID) {
		return nil, domainErrors.ErrForbidden
	}
	if _, err := model.NextOrderStatus(order.Status, event); err != nil {
		return nil, fmt.Errorf("%s order %d in status %s: %w", event, order.ID, order.Status, err)
	}
	return order, nil
}

func (e *OrderEngine) transitioned(event string, order *model.Order) {
	e.metrics.OrderTransitions.WithLabelValues(event).Inc()
	e.logger.Info("order "+event,
		slog.Int64("order_id", order.ID),
		slog.String("order_number", order.Number),
		slog.String("status", string(order.Status)),
		slog.String("total", order.Total.StringFixed(2)),
	)
}

func negate(q map[int64]int) map[int64]int {
	out := make(map[int64]int, len(q))
	for id, n := range q {
		out[id] = -n
	}
	return out
}
