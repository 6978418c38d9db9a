package model

import (
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/retailpos/internal/domain/errors"
)

// DiscountStatus describes the review state of a discount request.
type DiscountStatus string

const (
	DiscountStatusPending  DiscountStatus = "pending"
	DiscountStatusApproved DiscountStatus = "approved"
	DiscountStatusRejected DiscountStatus = "rejected"
)

// Decide moves a pending request to a terminal status.
func (s DiscountStatus) Decide(to DiscountStatus) (DiscountStatus, error) {
	if s != DiscountStatusPending {
		return s, domainErrors.ErrInvalidTransition
	}
	if to != DiscountStatusApproved && to != DiscountStatusRejected {
		return s, domainErrors.ErrInvalidTransition
	}
	return to, nil
}

// DiscountRequest asks a reviewer to lower the total of a pending order.
type DiscountRequest struct {
	ID          int64
	OrderID     int64
	RequestedBy int64
	Amount      decimal.Decimal
	Reason      string
	Status      DiscountStatus
	ReviewedBy  *int64
	ReviewedAt  *time.Time
	AdminNotes  string
	CreatedAt   time.Time
}

// DiscountReview is the outcome written when a request is decided.
type DiscountReview struct {
	Status     DiscountStatus
	ReviewedBy int64
	ReviewedAt time.Time
	Notes      string
}
