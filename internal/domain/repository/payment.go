package repository

import (
	"context"
	"time"

	"github.com/polkiloo/retailpos/internal/domain/model"
)

// PaymentRepository persists payment attempts.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, id int64) (*model.Payment, error)
	GetForUpdate(ctx context.Context, id int64) (*model.Payment, error)
	ListByOrder(ctx context.Context, orderID int64) ([]model.Payment, error)
	HasPending(ctx context.Context, orderID int64) (bool, error)
	Confirm(ctx context.Context, id int64, at time.Time) error
}

// ReceiptRepository persists receipts; one receipt per payment is enforced by storage.
type ReceiptRepository interface {
	NextNumber(ctx context.Context) (int64, error)
	Create(ctx context.Context, receipt *model.Receipt) error
	GetByPayment(ctx context.Context, paymentID int64) (*model.Receipt, error)
}
