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

const orderColumns = `id, order_number, customer_name, customer_email, customer_phone, sales_rep_id, status,
        subtotal, tax, discount, total, notes, created_at, updated_at, submitted_at, paid_at`

type orderRepository struct {
	q querier
}

func scanOrder(row rowScanner) (model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.Number, &o.Customer.Name, &o.Customer.Email, &o.Customer.Phone, &o.SalesRepID, &o.Status,
		&o.Subtotal, &o.Tax, &o.Discount, &o.Total, &o.Notes, &o.CreatedAt, &o.UpdatedAt, &o.SubmittedAt, &o.PaidAt)
	return o, err
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const query = `INSERT INTO orders (order_number, customer_name, customer_email, customer_phone, sales_rep_id, status,
        subtotal, tax, discount, total, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id, created_at, updated_at`

	err := r.q.QueryRow(ctx, query, order.Number, order.Customer.Name, order.Customer.Email, order.Customer.Phone,
		order.SalesRepID, order.Status, order.Subtotal, order.Tax, order.Discount, order.Total, order.Notes).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}

	items, err := r.insertItems(ctx, order.ID, order.Items)
	if err != nil {
		return err
	}
	order.Items = items
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
}

func (r *orderRepository) GetForUpdate(ctx context.Context, id int64) (*model.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 FOR UPDATE`, id)
}

func (r *orderRepository) get(ctx context.Context, query string, id int64) (*model.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}

	items, err := r.items(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *orderRepository) items(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	const query = `SELECT id, order_id, product_id, quantity, unit_price, subtotal FROM order_items WHERE order_id=$1 ORDER BY id`

	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.OrderItem, 0)
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// List returns orders without their items, newest first.
func (r *orderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	var (
		conds []string
		args  []any
	)
	if filter.SalesRepID != nil {
		args = append(args, *filter.SalesRepID)
		conds = append(conds, fmt.Sprintf("sales_rep_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status=$%d", len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) ReplaceItems(ctx context.Context, orderID int64, items []model.OrderItem) ([]model.OrderItem, error) {
	if _, err := r.q.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, orderID); err != nil {
		return nil, err
	}
	return r.insertItems(ctx, orderID, items)
}

func (r *orderRepository) insertItems(ctx context.Context, orderID int64, items []model.OrderItem) ([]model.OrderItem, error) {
	const query = `INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`

	out := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		it.OrderID = orderID
		if err := r.q.QueryRow(ctx, query, orderID, it.ProductID, it.Quantity, it.UnitPrice, it.Subtotal).Scan(&it.ID); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

func (r *orderRepository) UpdateTotals(ctx context.Context, order *model.Order) error {
	const query = `UPDATE orders SET subtotal=$2, tax=$3, discount=$4, total=$5, customer_name=$6, customer_email=$7,
        customer_phone=$8, notes=$9, updated_at=NOW() WHERE id=$1 RETURNING updated_at`

	err := r.q.QueryRow(ctx, query, order.ID, order.Subtotal, order.Tax, order.Discount, order.Total,
		order.Customer.Name, order.Customer.Email, order.Customer.Phone, order.Notes).Scan(&order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	const query = `UPDATE orders SET status=$2, updated_at=NOW(),
        submitted_at = CASE WHEN $2 = 'submitted' THEN NOW() ELSE submitted_at END,
        paid_at = CASE WHEN $2 = 'paid' THEN NOW() ELSE paid_at END
        WHERE id=$1`

	tag, err := r.q.Exec(ctx, query, orderID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// Delete removes the order; items and discount requests go with it by cascade.
func (r *orderRepository) Delete(ctx context.Context, orderID int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id=$1`, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}
