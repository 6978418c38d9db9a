package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/retailpos/internal/domain/errors"
	"github.com/polkiloo/retailpos/internal/domain/model"
	"github.com/polkiloo/retailpos/internal/domain/repository"
	"github.com/polkiloo/retailpos/internal/metrics"
)

// ReceiptDocument is everything printed on a receipt.
type ReceiptDocument struct {
	Number   string
	Order    model.Order
	Payment  model.Payment
	IssuedAt time.Time
}

// ReceiptRenderer writes receipt files.
type ReceiptRenderer interface {
	Render(ctx context.Context, doc ReceiptDocument) (path string, err error)
	Remove(path string) error
}

// PaymentEngine records payments and confirms each one exactly once.
type PaymentEngine struct {
	store    repository.Store
	orders   *OrderEngine
	renderer ReceiptRenderer
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewPaymentEngine constructs PaymentEngine.
func NewPaymentEngine(store repository.Store, orders *OrderEngine, renderer ReceiptRenderer, logger *slog.Logger, m *metrics.Metrics) *PaymentEngine {
	return &PaymentEngine{store: store, orders: orders, renderer: renderer, logger: logger, metrics: m, now: time.Now}
}

// CreatePayment opens a pending payment for the full total of a submitted order.
func (e *PaymentEngine) CreatePayment(ctx context.Context, actor model.Actor, orderID int64, method model.PaymentMethod, notes string) (*model.Payment, error) {
	if err := authorize(actor, cashierRoles...); err != nil {
		return nil, err
	}
	method = model.PaymentMethod(strings.ToLower(strings.TrimSpace(string(method))))
	if !method.Valid() {
		return nil, domainErrors.ErrInvalidInput
	}

	var payment *model.Payment
	err := e.store.WithinTransaction(ctx, func(tx repository.Factory) error {
		order, err := tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != model.OrderStatusSubmitted {
			return fmt.Errorf("order %d is %s: %w", order.ID, order.Status, domainErrors.ErrInvalidOrderState)
		}
		pending, err := tx.Payments().HasPending(ctx, order.ID)
		if err != nil {
			return err
		}
		if pending {
			return domainErrors.ErrPaymentPending
		}

		payment = &model.Payment{
			OrderID:      order.ID,
			AccountantID: actor.UserID,
			Amount:       order.Total,
			Method:       method,
			Status:       model.PaymentStatusPending,
			Notes:        notes,
		}
		if err := tx.Payments().Create(ctx, payment); err != nil {
			return err
		}
		return emit(ctx, tx.Outbox(), model.TopicPaymentCreated, order.ID, newPaymentPayload(payment, ""), e.now())
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("payment created",
		slog.Int64("payment_id", payment.ID),
		slog.Int64("order_id", orderID),
		slog.String("amount", payment.Amount.StringFixed(2)),
	)
	return payment, nil
}

// ConfirmPayment confirms a pending payment, issues its receipt and marks the
// order paid. Of several concurrent calls for one payment exactly one wins;
// the rest get ErrAlreadyConfirmed.
func (e *PaymentEngine) ConfirmPayment(ctx context.Context, actor model.Actor, paymentID int64) (*model.Payment, *model.Receipt, error) {
	if err := authorize(actor, cashierRoles...); err != nil {
		return nil, nil, err
	}
	filed, err := e.store.Payments().GetByID(ctx, paymentID)
	if err != nil {
		return nil, nil, err
	}

	var (
		payment  *model.Payment
		receipt  *model.Receipt
		paid     *model.Order
		rendered string
	)
	err = e.store.WithinTransaction(ctx, func(tx repository.Factory) error {
		order, err := tx.Orders().GetForUpdate(ctx, filed.OrderID)
		if err != nil {
			return err
		}
		payment, err = tx.Payments().GetForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		if payment.Status != model.PaymentStatusPending {
			return domainErrors.ErrAlreadyConfirmed
		}

		seq, err := tx.Receipts().NextNumber(ctx)
		if err != nil {
			return err
		}
		now := e.now()
		payment.Status = model.PaymentStatusConfirmed
		payment.ConfirmedAt = &now

		doc := ReceiptDocument{Number: formatReceiptNumber(seq), Order: *order, Payment: *payment, IssuedAt: now}
		rendered, err = e.renderer.Render(ctx, doc)
		if err != nil {
			return fmt.Errorf("render receipt %s: %w", doc.Number, err)
		}

		receipt = &model.Receipt{PaymentID: payment.ID, Number: doc.Number, FilePath: rendered, GeneratedAt: now}
		if err := tx.Receipts().Create(ctx, receipt); err != nil {
			return err
		}
		if err := tx.Payments().Confirm(ctx, payment.ID, now); err != nil {
			return err
		}
		if err := e.orders.markPaid(ctx, tx, order, now); err != nil {
			return err
		}
		paid = order
		return emit(ctx, tx.Outbox(), model.TopicPaymentConfirmed, order.ID, newPaymentPayload(payment, receipt.Number), now)
	})
	if err != nil {
		if rendered != "" {
			if rmErr := e.renderer.Remove(rendered); rmErr != nil {
				e.logger.Warn("remove orphaned receipt", slog.String("path", rendered), slog.Any("error", rmErr))
			}
		}
		if errors.Is(err, domainErrors.ErrAlreadyConfirmed) {
			e.metrics.ConfirmConflicts.Inc()
		}
		return nil, nil, err
	}

	e.metrics.PaymentsConfirmed.Inc()
	e.orders.transitioned(string(model.OrderEventPay), paid)
	e.logger.Info("payment confirmed",
		slog.Int64("payment_id", payment.ID),
		slog.String("receipt_number", receipt.Number),
	)
	return payment, receipt, nil
}

// GetReceipt returns the receipt of a confirmed payment.
func (e *PaymentEngine) GetReceipt(ctx context.Context, actor model.Actor, paymentID int64) (*model.Receipt, error) {
	payment, err := e.store.Payments().GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if err := e.canRead(ctx, actor, payment.OrderID); err != nil {
		return nil, err
	}
	return e.store.Receipts().GetByPayment(ctx, paymentID)
}

// ListPayments returns the payments recorded for an order.
func (e *PaymentEngine) ListPayments(ctx context.Context, actor model.Actor, orderID int64) ([]model.Payment, error) {
	if err := e.canRead(ctx, actor, orderID); err != nil {
		return nil, err
	}
	return e.store.Payments().ListByOrder(ctx, orderID)
}

func (e *PaymentEngine) canRead(ctx context.Context, actor model.Actor, orderID int64) error {
	if actor.UserID <= 0 {
		return domainErrors.ErrForbidden
	}
	order, err := e.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if actor.Is(paymentReaders...) || order.OwnedBy(actor.UserID) {
		return nil
	}
	return domainErrors.ErrForbidden
}

func newPaymentPayload(p *model.Payment, receiptNumber string) paymentPayload {
	return paymentPayload{
		PaymentID:     p.ID,
		OrderID:       p.OrderID,
		AccountantID:  p.AccountantID,
		Amount:        p.Amount,
		Method:        p.Method,
		Status:        p.Status,
		ReceiptNumber: receiptNumber,
	}
}
