package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/retailpos/internal/domain/errors"
	"github.com/polkiloo/retailpos/internal/domain/model"
	"github.com/polkiloo/retailpos/internal/domain/repository"
	"github.com/polkiloo/retailpos/internal/metrics"
)

// DiscountWorkflow files and reviews discount requests. Approved amounts reach
// the order only through the order engine.
type DiscountWorkflow struct {
	store   repository.Store
	orders  *OrderEngine
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewDiscountWorkflow constructs DiscountWorkflow.
func NewDiscountWorkflow(store repository.Store, orders *OrderEngine, logger *slog.Logger, m *metrics.Metrics) *DiscountWorkflow {
	return &DiscountWorkflow{store: store, orders: orders, logger: logger, metrics: m, now: time.Now}
}

// FileRequest asks for a discount on a pending order owned by the actor.
func (w *DiscountWorkflow) FileRequest(ctx context.Context, actor model.Actor, orderID int64, amount decimal.Decimal, reason string) (*model.DiscountRequest, error) {
	if err := authorize(actor, orderingRoles...); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, domainErrors.ErrInvalidAmount
	}

	req := &model.DiscountRequest{
		OrderID:     orderID,
		RequestedBy: actor.UserID,
		Amount:      amount,
		Reason:      reason,
		Status:      model.DiscountStatusPending,
	}
	err := w.store.WithinTransaction(ctx, func(tx repository.Factory) error {
		order, err := tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != model.OrderStatusPending || !order.OwnedBy(actor.UserID) {
			return domainErrors.ErrInvalidOrderState
		}
		if amount.GreaterThan(order.Total) {
			return domainErrors.ErrInvalidAmount
		}
		if err := tx.Discounts().Create(ctx, req); err != nil {
			return err
		}
		return emit(ctx, tx.Outbox(), model.TopicDiscountFiled, orderID, newDiscountPayload(req), w.now())
	})
	if err != nil {
		return nil, err
	}

	w.logger.Info("discount requested",
		slog.Int64("request_id", req.ID),
		slog.Int64("order_id", orderID),
		slog.String("amount", amount.StringFixed(2)),
	)
	return req, nil
}

// Approve grants a pending request and applies its amount to the order in
// the same transaction. When the order no longer accepts the discount the
// request stays pending.
func (w *DiscountWorkflow) Approve(ctx context.Context, actor model.Actor, requestID int64, notes string) (*model.DiscountRequest, error) {
	return w.review(ctx, actor, requestID, model.DiscountStatusApproved, notes)
}

// Reject closes a pending request without touching the order.
func (w *DiscountWorkflow) Reject(ctx context.Context, actor model.Actor, requestID int64, notes string) (*model.DiscountRequest, error) {
	return w.review(ctx, actor, requestID, model.DiscountStatusRejected, notes)
}

func (w *DiscountWorkflow) review(ctx context.Context, actor model.Actor, requestID int64, decision model.DiscountStatus, notes string) (*model.DiscountRequest, error) {
	if err := authorize(actor, reviewerRoles...); err != nil {
		return nil, err
	}
	filed, err := w.store.Discounts().GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	var req *model.DiscountRequest
	err = w.store.WithinTransaction(ctx, func(tx repository.Factory) error {
		order, err := tx.Orders().GetForUpdate(ctx, filed.OrderID)
		if err != nil {
			return err
		}
		req, err = tx.Discounts().GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if _, err := req.Status.Decide(decision); err != nil {
			return err
		}

		if decision == model.DiscountStatusApproved {
			if err := w.orders.applyDiscount(ctx, tx, order, req.Amount); err != nil {
				return err
			}
		}

		now := w.now()
		review := model.DiscountReview{Status: decision, ReviewedBy: actor.UserID, ReviewedAt: now, Notes: notes}
		if err := tx.Discounts().Review(ctx, req.ID, review); err != nil {
			return err
		}
		req.Status = decision
		req.ReviewedBy = &review.ReviewedBy
		req.ReviewedAt = &now
		req.AdminNotes = notes

		topic := model.TopicDiscountRejected
		if decision == model.DiscountStatusApproved {
			topic = model.TopicDiscountApproved
		}
		return emit(ctx, tx.Outbox(), topic, req.OrderID, newDiscountPayload(req), now)
	})
	if err != nil {
		return nil, err
	}

	w.metrics.DiscountDecisions.WithLabelValues(string(decision)).Inc()
	w.logger.Info("discount "+string(decision),
		slog.Int64("request_id", req.ID),
		slog.Int64("order_id", req.OrderID),
		slog.Int64("reviewed_by", actor.UserID),
	)
	return req, nil
}

// ListRequests returns discount requests. Sales reps only see their own.
func (w *DiscountWorkflow) ListRequests(ctx context.Context, actor model.Actor, status *model.DiscountStatus) ([]model.DiscountRequest, error) {
	if actor.UserID <= 0 || !actor.Role.Valid() {
		return nil, domainErrors.ErrForbidden
	}
	filter := repository.DiscountFilter{Status: status}
	if actor.Is(model.RoleSalesRep) {
		filter.RequestedBy = &actor.UserID
	}
	return w.store.Discounts().List(ctx, filter)
}

// GetRequest returns a single discount request.
func (w *DiscountWorkflow) GetRequest(ctx context.Context, actor model.Actor, requestID int64) (*model.DiscountRequest, error) {
	if actor.UserID <= 0 || !actor.Role.Valid() {
		return nil, domainErrors.ErrForbidden
	}
	req, err := w.store.Discounts().GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if actor.Is(model.RoleSalesRep) && req.RequestedBy != actor.UserID {
		return nil, domainErrors.ErrForbidden
	}
	return req, nil
}

func newDiscountPayload(req *model.DiscountRequest) discountPayload {
	return discountPayload{
		RequestID:   req.ID,
		OrderID:     req.OrderID,
		RequestedBy: req.RequestedBy,
		Amount:      req.Amount,
		Status:      req.Status,
		ReviewedBy:  req.ReviewedBy,
	}
}
