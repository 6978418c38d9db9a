package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/retailpos/internal/domain/errors"
	"github.com/polkiloo/retailpos/internal/domain/model"
	"github.com/polkiloo/retailpos/internal/metrics"
	"github.com/polkiloo/retailpos/internal/storage/memory"
)

var (
	repAlice   = model.Actor{UserID: 1, Role: model.RoleSalesRep}
	repBob     = model.Actor{UserID: 2, Role: model.RoleSalesRep}
	admin      = model.Actor{UserID: 3, Role: model.RoleAdmin}
	accountant = model.Actor{UserID: 4, Role: model.RoleAccountant}
	manager    = model.Actor{UserID: 5, Role: model.RoleManager}
)

type fakeRenderer struct {
	mu       sync.Mutex
	err      error
	rendered []string
	removed  []string
}

func (r *fakeRenderer) Render(_ context.Context, doc ReceiptDocument) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	path := "receipts/" + doc.Number + ".txt"
	r.rendered = append(r.rendered, path)
	return path, nil
}

func (r *fakeRenderer) Remove(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, path)
	return nil
}

type idemEntry struct {
	orderID int64
	done    bool
}

type fakeIdempotency struct {
	mu      sync.Mutex
	entries map[string]idemEntry
}

func (f *fakeIdempotency) Claim(_ context.Context, key string) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.entries[key]; ok {
		if !e.done {
			return 0, false, domainErrors.ErrIdempotencyInFlight
		}
		return e.orderID, false, nil
	}
	f.entries[key] = idemEntry{}
	return 0, true, nil
}

func (f *fakeIdempotency) Complete(_ context.Context, key string, orderID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = idemEntry{orderID: orderID, done: true}
	return nil
}

func (f *fakeIdempotency) Release(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

type fixture struct {
	t         *testing.T
	ctx       context.Context
	store     *memory.Store
	metrics   *metrics.Metrics
	ledger    *InventoryLedger
	orders    *OrderEngine
	discounts *DiscountWorkflow
	payments  *PaymentEngine
	catalog   *CatalogUseCase
	renderer  *fakeRenderer
	idem      *fakeIdempotency
}

func newFixture(t *testing.T, taxRate string) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	m := metrics.New(nil)
	renderer := &fakeRenderer{}
	idem := &fakeIdempotency{entries: make(map[string]idemEntry)}

	ledger := NewInventoryLedger(store, logger, m)
	orders := NewOrderEngine(store, ledger, Pricing{TaxRate: decimal.RequireFromString(taxRate)}, idem, logger, m)

	return &fixture{
		t:         t,
		ctx:       context.Background(),
		store:     store,
		metrics:   m,
		ledger:    ledger,
		orders:    orders,
		discounts: NewDiscountWorkflow(store, orders, logger, m),
		payments:  NewPaymentEngine(store, orders, renderer, logger, m),
		catalog:   NewCatalogUseCase(store, ledger, logger),
		renderer:  renderer,
		idem:      idem,
	}
}

func (f *fixture) product(sku, price string, qty, minLevel int) model.Product {
	f.t.Helper()
	p, err := f.catalog.CreateProduct(f.ctx, admin, model.ProductDetails{
		SKU:           sku,
		Name:          "Product " + sku,
		Category:      "general",
		Price:         decimal.RequireFromString(price),
		MinStockLevel: minLevel,
	}, qty)
	require.NoError(f.t, err)
	return *p
}

func (f *fixture) stock(id int64) int {
	f.t.Helper()
	p, err := f.store.Products().GetByID(f.ctx, id)
	require.NoError(f.t, err)
	return p.Quantity
}

func (f *fixture) order(actor model.Actor, lines ...model.LineRequest) *model.Order {
	f.t.Helper()
	o, err := f.orders.CreateOrder(f.ctx, actor, CreateOrderInput{Items: lines})
	require.NoError(f.t, err)
	return o
}

func (f *fixture) submitted(actor model.Actor, lines ...model.LineRequest) *model.Order {
	f.t.Helper()
	o, err := f.orders.SubmitOrder(f.ctx, actor, f.order(actor, lines...).ID)
	require.NoError(f.t, err)
	return o
}

func (f *fixture) reload(id int64) *model.Order {
	f.t.Helper()
	o, err := f.store.Orders().GetByID(f.ctx, id)
	require.NoError(f.t, err)
	return o
}

// topics returns the topics of unpublished outbox events, oldest first.
func (f *fixture) topics() []string {
	f.t.Helper()
	events, err := f.store.Outbox().ListPending(f.ctx, 1000)
	require.NoError(f.t, err)
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Topic)
	}
	return out
}

func line(productID int64, qty int) model.LineRequest {
	return model.LineRequest{ProductID: productID, Quantity: qty}
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "expected %s, got %s", want, got)
}
