package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/retailpos/internal/domain/errors"
	"github.com/polkiloo/retailpos/internal/domain/model"
	"github.com/polkiloo/retailpos/internal/domain/repository"
)

const discountColumns = `id, order_id, requested_by, discount_amount, reason, status, reviewed_by, reviewed_at, admin_notes, created_at`

type discountRepository struct {
	q querier
}

func scanDiscount(row rowScanner) (model.DiscountRequest, error) {
	var d model.DiscountRequest
	err := row.Scan(&d.ID, &d.OrderID, &d.RequestedBy, &d.Amount, &d.Reason, &d.Status, &d.ReviewedBy, &d.ReviewedAt, &d.AdminNotes, &d.CreatedAt)
	return d, err
}

func (r *discountRepository) Create(ctx context.Context, req *model.DiscountRequest) error {
	const query = `INSERT INTO discount_requests (order_id, requested_by, discount_amount, reason, status)
        VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`

	return r.q.QueryRow(ctx, query, req.OrderID, req.RequestedBy, req.Amount, req.Reason, req.Status).Scan(&req.ID, &req.CreatedAt)
}

func (r *discountRepository) GetByID(ctx context.Context, id int64) (*model.DiscountRequest, error) {
	return r.get(ctx, `SELECT `+discountColumns+` FROM discount_requests WHERE id=$1`, id)
}

func (r *discountRepository) GetForUpdate(ctx context.Context, id int64) (*model.DiscountRequest, error) {
	return r.get(ctx, `SELECT `+discountColumns+` FROM discount_requests WHERE id=$1 FOR UPDATE`, id)
}

func (r *discountRepository) get(ctx context.Context, query string, id int64) (*model.DiscountRequest, error) {
	d, err := scanDiscount(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *discountRepository) List(ctx context.Context, filter repository.DiscountFilter) ([]model.DiscountRequest, error) {
	var (
		conds []string
		args  []any
	)
	if filter.OrderID != nil {
		args = append(args, *filter.OrderID)
		conds = append(conds, fmt.Sprintf("order_id=$%d", len(args)))
	}
	if filter.RequestedBy != nil {
		args = append(args, *filter.RequestedBy)
		conds = append(conds, fmt.Sprintf("requested_by=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status=$%d", len(args)))
	}

	query := `SELECT ` + discountColumns + ` FROM discount_requests`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]model.DiscountRequest, 0)
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

// Review records a decision; it only succeeds while the request is still pending.
func (r *discountRepository) Review(ctx context.Context, id int64, review model.DiscountReview) error {
	const query = `UPDATE discount_requests SET status=$2, reviewed_by=$3, reviewed_at=$4, admin_notes=$5
        WHERE id=$1 AND status='pending'`

	tag, err := r.q.Exec(ctx, query, id, review.Status, review.ReviewedBy, review.ReviewedAt, review.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrInvalidTransition
	}
	return nil
}

func (r *discountRepository) RejectPendingByOrder(ctx context.Context, orderID int64, review model.DiscountReview) (int64, error) {
	const query = `UPDATE discount_requests SET status=$2, reviewed_by=$3, reviewed_at=$4, admin_notes=$5
        WHERE order_id=$1 AND status='pending'`

	tag, err := r.q.Exec(ctx, query, orderID, model.DiscountStatusRejected, review.ReviewedBy, review.ReviewedAt, review.Notes)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *discountRepository) DeleteByOrder(ctx context.Context, orderID int64) error {
	_, err := r.q.Exec(ctx, `DELETE FROM discount_requests WHERE order_id=$1`, orderID)
	return err
}
