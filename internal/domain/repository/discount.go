package repository

import (
	"context"

	"github.com/polkiloo/retailpos/internal/domain/model"
)

// DiscountFilter narrows discount request listings.
type DiscountFilter struct {
	OrderID     *int64
	RequestedBy *int64
	Status      *model.DiscountStatus
}

// DiscountRepository persists discount requests.
type DiscountRepository interface {
	Create(ctx context.Context, req *model.DiscountRequest) error
	GetByID(ctx context.Context, id int64) (*model.DiscountRequest, error)
	GetForUpdate(ctx context.Context, id int64) (*model.DiscountRequest, error)
	List(ctx context.Context, filter DiscountFilter) ([]model.DiscountRequest, error)
	Review(ctx context.Context, id int64, review model.DiscountReview) error
	RejectPendingByOrder(ctx context.Context, orderID int64, review model.DiscountReview) (int64, error)
	DeleteByOrder(ctx context.Context, orderID int64) error
}
