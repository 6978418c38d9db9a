package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/retailpos/internal/domain/errors"
	"github.com/polkiloo/retailpos/internal/domain/model"
)

const paymentColumns = `id, order_id, accountant_id, amount, payment_method, payment_status, confirmed_at, notes, created_at`

type paymentRepository struct {
	q querier
}

func scanPayment(row rowScanner) (model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.OrderID, &p.AccountantID, &p.Amount, &p.Method, &p.Status, &p.ConfirmedAt, &p.Notes, &p.CreatedAt)
	return p, err
}

// Create stores a payment. The partial unique index on pending payments turns a
// second live payment for the same order into ErrPaymentPending.
func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	const query = `INSERT INTO payments (order_id, accountant_id, amount, payment_method, payment_status, notes)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`

	err := r.q.QueryRow(ctx, query, payment.OrderID, payment.AccountantID, payment.Amount, payment.Method, payment.Status, payment.Notes).
		Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domainErrors.ErrPaymentPending
		}
		return err
	}
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	return r.get(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=$1`, id)
}

func (r *paymentRepository) GetForUpdate(ctx context.Context, id int64) (*model.Payment, error) {
	return r.get(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=$1 FOR UPDATE`, id)
}

func (r *paymentRepository) get(ctx context.Context, query string, id int64) (*model.Payment, error) {
	p, err := scanPayment(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) ListByOrder(ctx context.Context, orderID int64) ([]model.Payment, error) {
	rows, err := r.q.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id=$1 ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]model.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) HasPending(ctx context.Context, orderID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM payments WHERE order_id=$1 AND payment_status='pending')`

	var exists bool
	if err := r.q.QueryRow(ctx, query, orderID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Confirm flips a pending payment; a payment that is no longer pending yields ErrAlreadyConfirmed.
func (r *paymentRepository) Confirm(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE payments SET payment_status='confirmed', confirmed_at=$2 WHERE id=$1 AND payment_status='pending'`

	tag, err := r.q.Exec(ctx, query, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrAlreadyConfirmed
	}
	return nil
}

type receiptRepository struct {
	q querier
}

func (r *receiptRepository) NextNumber(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('receipt_number_seq')`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *receiptRepository) Create(ctx context.Context, receipt *model.Receipt) error {
	const query = `INSERT INTO receipts (payment_id, receipt_number, file_path, generated_at)
        VALUES ($1, $2, $3, $4) RETURNING id`

	err := r.q.QueryRow(ctx, query, receipt.PaymentID, receipt.Number, receipt.FilePath, receipt.GeneratedAt).Scan(&receipt.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *receiptRepository) GetByPayment(ctx context.Context, paymentID int64) (*model.Receipt, error) {
	const query = `SELECT id, payment_id, receipt_number, file_path, generated_at FROM receipts WHERE payment_id=$1`

	var rc model.Receipt
	if err := r.q.QueryRow(ctx, query, paymentID).Scan(&rc.ID, &rc.PaymentID, &rc.Number, &rc.FilePath, &rc.GeneratedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &rc, nil
}
