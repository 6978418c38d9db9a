package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/retailpos/internal/domain/errors"
	"github.com/polkiloo/retailpos/internal/domain/model"
)

const productColumns = `id, sku, product_name, category, price, quantity, min_stock_level, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type productRepository struct {
	q querier
}

func scanProduct(row rowScanner) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.Price, &p.Quantity, &p.MinStockLevel, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *productRepository) Create(ctx context.Context, details model.ProductDetails) (*model.Product, error) {
	const query = `INSERT INTO products (sku, product_name, category, price, min_stock_level)
        VALUES ($1, $2, $3, $4, $5) RETURNING ` + productColumns

	p, err := scanProduct(r.q.QueryRow(ctx, query, details.SKU, details.Name, details.Category, details.Price, details.MinStockLevel))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) Update(ctx context.Context, id int64, details model.ProductDetails) (*model.Product, error) {
	const query = `UPDATE products SET sku=$2, product_name=$3, category=$4, price=$5, min_stock_level=$6, updated_at=NOW()
        WHERE id=$1 RETURNING ` + productColumns

	p, err := scanProduct(r.q.QueryRow(ctx, query, id, details.SKU, details.Name, details.Category, details.Price, details.MinStockLevel))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, domainErrors.ErrNotFound
		case isUniqueViolation(err):
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET is_active=$2, updated_at=NOW() WHERE id=$1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id=$1`

	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	products, err := r.list(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]model.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (r *productRepository) List(ctx context.Context, activeOnly bool) ([]model.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE ($1 = FALSE OR is_active) ORDER BY sku`
	return r.list(ctx, query, activeOnly)
}

func (r *productRepository) ListLowStock(ctx context.Context) ([]model.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE is_active AND quantity <= min_stock_level ORDER BY quantity, sku`
	return r.list(ctx, query)
}

func (r *productRepository) list(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

// Reserve decrements stock in one guarded statement so concurrent callers can
// never drive the counter below zero.
func (r *productRepository) Reserve(ctx context.Context, id int64, qty int) (int, error) {
	const query = `UPDATE products SET quantity = quantity - $2, updated_at=NOW()
        WHERE id=$1 AND is_active AND quantity >= $2 RETURNING quantity`

	var remaining int
	err := r.q.QueryRow(ctx, query, id, qty).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	var (
		available int
		active    bool
	)
	if err := r.q.QueryRow(ctx, `SELECT quantity, is_active FROM products WHERE id=$1`, id).Scan(&available, &active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domainErrors.ErrNotFound
		}
		return 0, err
	}
	if !active {
		return 0, domainErrors.ErrNotFound
	}
	return 0, &domainErrors.StockError{ProductID: id, Requested: qty, Available: available}
}

func (r *productRepository) Release(ctx context.Context, id int64, qty int) (int, error) {
	const query = `UPDATE products SET quantity = quantity + $2, updated_at=NOW() WHERE id=$1 RETURNING quantity`

	var remaining int
	if err := r.q.QueryRow(ctx, query, id, qty).Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domainErrors.ErrNotFound
		}
		return 0, err
	}
	return remaining, nil
}
