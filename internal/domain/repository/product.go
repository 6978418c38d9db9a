package repository

import (
	"context"

	"github.com/polkiloo/retailpos/internal/domain/model"
)

// ProductRepository persists catalog entries and their stock counters.
//
// Reserve and Release are single atomic statements against the product row.
// Reserve fails with a *errors.StockError when fewer than qty units remain and
// with ErrNotFound when the product is unknown or archived.
type ProductRepository interface {
	Create(ctx context.Context, details model.ProductDetails) (*model.Product, error)
	Update(ctx context.Context, id int64, details model.ProductDetails) (*model.Product, error)
	SetActive(ctx context.Context, id int64, active bool) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)
	List(ctx context.Context, activeOnly bool) ([]model.Product, error)
	ListLowStock(ctx context.Context) ([]model.Product, error)
	Reserve(ctx context.Context, id int64, qty int) (remaining int, err error)
	Release(ctx context.Context, id int64, qty int) (remaining int, err error)
}
