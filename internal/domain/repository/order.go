package repository

import (
	"context"

	"github.com/polkiloo/retailpos/internal/domain/model"
)

// OrderFilter narrows order listings.
type OrderFilter struct {
	SalesRepID *int64
	Status     *model.OrderStatus
}

// OrderRepository describes persistence operations with orders and their items.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	// GetForUpdate loads the order and holds its row lock until the transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, error)
	ReplaceItems(ctx context.Context, orderID int64, items []model.OrderItem) ([]model.OrderItem, error)
	UpdateTotals(ctx context.Context, order *model.Order) error
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	Delete(ctx context.Context, orderID int64) error
}
