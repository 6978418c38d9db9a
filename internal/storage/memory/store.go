// Package memory is a process-local repository.Store used when no database is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/polkiloo/retailpos/internal/domain/model"
	"github.com/polkiloo/retailpos/internal/domain/repository"
)

type state struct {
	users     map[int64]model.User
	products  map[int64]model.Product
	orders    map[int64]model.Order
	discounts map[int64]model.DiscountRequest
	payments  map[int64]model.Payment
	receipts  map[int64]model.Receipt
	outbox    []model.OutboxEvent

	lastUserID     int64
	lastProductID  int64
	lastOrderID    int64
	lastItemID     int64
	lastDiscountID int64
	lastPaymentID  int64
	lastReceiptID  int64
	receiptSeq     int64
}

func newState() *state {
	return &state{
		users:     make(map[int64]model.User),
		products:  make(map[int64]model.Product),
		orders:    make(map[int64]model.Order),
		discounts: make(map[int64]model.DiscountRequest),
		payments:  make(map[int64]model.Payment),
		receipts:  make(map[int64]model.Receipt),
	}
}

func (s *state) clone() *state {
	c := *s
	c.users = cloneMap(s.users)
	c.products = cloneMap(s.products)
	c.discounts = cloneMap(s.discounts)
	c.payments = cloneMap(s.payments)
	c.receipts = cloneMap(s.receipts)
	c.orders = make(map[int64]model.Order, len(s.orders))
	for id, o := range s.orders {
		o.Items = append([]model.OrderItem(nil), o.Items...)
		c.orders[id] = o
	}
	c.outbox = append([]model.OutboxEvent(nil), s.outbox...)
	return &c
}

func cloneMap[V any](m map[int64]V) map[int64]V {
	out := make(map[int64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// access runs fn against the state; write selects the exclusive lock.
type access func(write bool, fn func(st *state) error) error

// Store keeps all data in memory behind a single writer lock.
type Store struct {
	mu     sync.RWMutex
	st     *state
	now    func() time.Time
	leases map[string]time.Time
}

var (
	_ repository.Store        = (*Store)(nil)
	_ repository.OutboxLeaser = (*Store)(nil)
)

// New creates an empty store.
func New() *Store {
	return &Store{
		st:     newState(),
		now:    func() time.Time { return time.Now().UTC() },
		leases: make(map[string]time.Time),
	}
}

func (s *Store) access(write bool, fn func(st *state) error) error {
	if write {
		s.mu.Lock()
		defer s.mu.Unlock()
	} else {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(s.st)
}

// WithinTransaction serialises fn against every other writer. Changes are
// made on a copy that replaces the live state only when fn succeeds.
func (s *Store) WithinTransaction(ctx context.Context, fn func(tx repository.Factory) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	inTx := func(_ bool, f func(st *state) error) error { return f(work) }
	if err := fn(factory{run: inTx, now: s.now}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// LeasePending claims unpublished events for ttl under a short write lock.
func (s *Store) LeasePending(ctx context.Context, limit int, ttl time.Duration) ([]model.OutboxEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make([]model.OutboxEvent, 0)
	for _, e := range s.st.outbox {
		if limit > 0 && len(out) == limit {
			break
		}
		if e.PublishedAt != nil {
			continue
		}
		if until, ok := s.leases[e.ID]; ok && now.Before(until) {
			continue
		}
		s.leases[e.ID] = now.Add(ttl)
		out = append(out, e)
	}
	return out, nil
}

// CompleteLease drops published events from the outbox and releases the
// claim on the others.
func (s *Store) CompleteLease(_ context.Context, leased, published []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range leased {
		delete(s.leases, id)
	}
	s.st.prune(published)
	return nil
}

// HealthCheck always succeeds.
func (s *Store) HealthCheck(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

func (s *Store) bound() factory { return factory{run: s.access, now: s.now} }

func (s *Store) Users() repository.UserRepository         { return s.bound().Users() }
func (s *Store) Products() repository.ProductRepository   { return s.bound().Products() }
func (s *Store) Orders() repository.OrderRepository       { return s.bound().Orders() }
func (s *Store) Discounts() repository.DiscountRepository { return s.bound().Discounts() }
func (s *Store) Payments() repository.PaymentRepository   { return s.bound().Payments() }
func (s *Store) Receipts() repository.ReceiptRepository   { return s.bound().Receipts() }
func (s *Store) Outbox() repository.OutboxRepository      { return s.bound().Outbox() }

type factory struct {
	run access
	now func() time.Time
}

func (f factory) Users() repository.UserRepository         { return &userRepository{f} }
func (f factory) Products() repository.ProductRepository   { return &productRepository{f} }
func (f factory) Orders() repository.OrderRepository       { return &orderRepository{f} }
func (f factory) Discounts() repository.DiscountRepository { return &discountRepository{f} }
func (f factory) Payments() repository.PaymentRepository   { return &paymentRepository{f} }
func (f factory) Receipts() repository.ReceiptRepository   { return &receiptRepository{f} }
func (f factory) Outbox() repository.OutboxRepository      { return &outboxRepository{f} }
