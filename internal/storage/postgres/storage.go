package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polkiloo/retailpos/internal/domain/repository"
)

const uniqueViolation = "23505"

// querier is the statement surface shared by the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxPool interface {
	querier
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

var _ repository.Store = (*Storage)(nil)

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories bound to the pool.
func (s *Storage) Users() repository.UserRepository { return &userRepository{q: s.pool} }

func (s *Storage) Products() repository.ProductRepository { return &productRepository{q: s.pool} }

func (s *Storage) Orders() repository.OrderRepository { return &orderRepository{q: s.pool} }

func (s *Storage) Discounts() repository.DiscountRepository { return &discountRepository{q: s.pool} }

func (s *Storage) Payments() repository.PaymentRepository { return &paymentRepository{q: s.pool} }

func (s *Storage) Receipts() repository.ReceiptRepository { return &receiptRepository{q: s.pool} }

func (s *Storage) Outbox() repository.OutboxRepository { return &outboxRepository{q: s.pool} }

// txFactory hands out repositories bound to a single transaction.
type txFactory struct {
	tx pgx.Tx
}

func (f txFactory) Users() repository.UserRepository       { return &userRepository{q: f.tx} }
func (f txFactory) Products() repository.ProductRepository { return &productRepository{q: f.tx} }
func (f txFactory) Orders() repository.OrderRepository     { return &orderRepository{q: f.tx} }
func (f txFactory) Discounts() repository.DiscountRepository {
	return &discountRepository{q: f.tx}
}
func (f txFactory) Payments() repository.PaymentRepository { return &paymentRepository{q: f.tx} }
func (f txFactory) Receipts() repository.ReceiptRepository { return &receiptRepository{q: f.tx} }
func (f txFactory) Outbox() repository.OutboxRepository    { return &outboxRepository{q: f.tx} }

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS products (
            id BIGSERIAL PRIMARY KEY,
            sku TEXT UNIQUE NOT NULL,
            product_name TEXT NOT NULL,
            category TEXT NOT NULL DEFAULT '',
            price NUMERIC(14,2) NOT NULL CHECK (price >= 0),
            quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
            min_stock_level INTEGER NOT NULL DEFAULT 0 CHECK (min_stock_level >= 0),
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            order_number TEXT UNIQUE NOT NULL,
            customer_name TEXT NOT NULL DEFAULT '',
            customer_email TEXT NOT NULL DEFAULT '',
            customer_phone TEXT NOT NULL DEFAULT '',
            sales_rep_id BIGINT NOT NULL REFERENCES users(id),
            status TEXT NOT NULL,
            subtotal NUMERIC(14,2) NOT NULL,
            tax NUMERIC(14,2) NOT NULL,
            discount NUMERIC(14,2) NOT NULL DEFAULT 0,
            total NUMERIC(14,2) NOT NULL CHECK (total >= 0),
            notes TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            submitted_at TIMESTAMPTZ,
            paid_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            product_id BIGINT NOT NULL REFERENCES products(id),
            quantity INTEGER NOT NULL CHECK (quantity >= 1),
            unit_price NUMERIC(14,2) NOT NULL,
            subtotal NUMERIC(14,2) NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS discount_requests (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            requested_by BIGINT NOT NULL REFERENCES users(id),
            discount_amount NUMERIC(14,2) NOT NULL CHECK (discount_amount > 0),
            reason TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL,
            reviewed_by BIGINT REFERENCES users(id),
            reviewed_at TIMESTAMPTZ,
            admin_notes TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS payments (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            accountant_id BIGINT NOT NULL REFERENCES users(id),
            amount NUMERIC(14,2) NOT NULL,
            payment_method TEXT NOT NULL,
            payment_status TEXT NOT NULL,
            confirmed_at TIMESTAMPTZ,
            notes TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE SEQUENCE IF NOT EXISTS receipt_number_seq`,
		`CREATE TABLE IF NOT EXISTS receipts (
            id BIGSERIAL PRIMARY KEY,
            payment_id BIGINT UNIQUE NOT NULL REFERENCES payments(id),
            receipt_number TEXT UNIQUE NOT NULL,
            file_path TEXT NOT NULL,
            generated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
            id TEXT PRIMARY KEY,
            topic TEXT NOT NULL,
            event_key TEXT NOT NULL,
            payload JSONB NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            published_at TIMESTAMPTZ
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_payments_pending_order ON payments(order_id) WHERE payment_status = 'pending'`,
		`CREATE INDEX IF NOT EXISTS idx_orders_sales_rep ON orders(sales_rep_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_discount_requests_order ON discount_requests(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_order ON payments(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox_events(created_at) WHERE published_at IS NULL`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// WithinTransaction runs fn with repositories bound to one transaction.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(tx repository.Factory) error) error {
	return s.withinTx(ctx, func(tx pgx.Tx) error {
		return fn(txFactory{tx: tx})
	})
}

func (s *Storage) withinTx(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) && s.logger != nil {
				s.logger.Warn("transaction rollback failed", slog.String("error", rbErr.Error()))
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
