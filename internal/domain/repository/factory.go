package repository

import "context"

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Products() ProductRepository
	Orders() OrderRepository
	Discounts() DiscountRepository
	Payments() PaymentRepository
	Receipts() ReceiptRepository
	Outbox() OutboxRepository
}

// Store is a Factory that can run a unit of work atomically.
// Repositories handed to fn share one transaction; returning an error from fn
// discards every change made through them.
type Store interface {
	Factory
	WithinTransaction(ctx context.Context, fn func(tx Factory) error) error
}
