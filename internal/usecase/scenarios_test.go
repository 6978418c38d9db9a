package usecase

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/retailpos/internal/domain/errors"
	"github.com/polkiloo/retailpos/internal/domain/model"
)

func TestCheckoutLifecycle(t *testing.T) {
	f := newFixture(t, "0.10")
	x := f.product("X", "12.50", 5, 0)

	order := f.order(repAlice, line(x.ID, 2))
	assert.Equal(t, 3, f.stock(x.ID))

	_, err := f.orders.SubmitOrder(f.ctx, repAlice, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, f.stock(x.ID))

	payment, err := f.payments.CreatePayment(f.ctx, accountant, order.ID, model.PaymentMethodCash, "")
	require.NoError(t, err)
	assertMoney(t, order.Total.String(), payment.Amount)

	confirmed, receipt, err := f.payments.ConfirmPayment(f.ctx, accountant, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusConfirmed, confirmed.Status)
	assert.Equal(t, payment.ID, receipt.PaymentID)

	assert.Equal(t, model.OrderStatusPaid, f.reload(order.ID).Status)
	assert.Equal(t, 3, f.stock(x.ID))

	_, _, err = f.payments.ConfirmPayment(f.ctx, accountant, payment.ID)
	assert.ErrorIs(t, err, domainErrors.ErrAlreadyConfirmed)
	assert.Len(t, f.renderer.rendered, 1)
}

func TestApprovedDiscountLowersTotalOnce(t *testing.T) {
	f := newFixture(t, "0")
	p := f.product("P", "1000", 5, 0)
	order := f.order(repAlice, line(p.ID, 2))
	assertMoney(t, "2000", order.Total)

	req, err := f.discounts.FileRequest(f.ctx, repAlice, order.ID, decimal.RequireFromString("500"), "bulk purchase")
	require.NoError(t, err)

	approved, err := f.discounts.Approve(f.ctx, admin, req.ID, "ok")
	require.NoError(t, err)
	assert.Equal(t, model.DiscountStatusApproved, approved.Status)

	stored := f.reload(order.ID)
	assertMoney(t, "1500", stored.Total)
	assertMoney(t, "500", stored.Discount)

	_, err = f.discounts.Approve(f.ctx, admin, req.ID, "again")
	assert.ErrorIs(t, err, domainErrors.ErrInvalidTransition)
	assertMoney(t, "1500", f.reload(order.ID).Total)
	assert.Contains(t, f.topics(), model.TopicDiscountApproved)
}

func TestDeleteOrderRestoresStock(t *testing.T) {
	f := newFixture(t, "0")
	y := f.product("Y", "3", 8, 0)
	order := f.order(repAlice, line(y.ID, 3))
	_, err := f.discounts.FileRequest(f.ctx, repAlice, order.ID, decimal.RequireFromString("1"), "")
	require.NoError(t, err)
	assert.Equal(t, 5, f.stock(y.ID))

	require.NoError(t, f.orders.DeleteOrder(f.ctx, repAlice, order.ID))
	assert.Equal(t, 8, f.stock(y.ID))

	_, err = f.store.Orders().GetByID(f.ctx, order.ID)
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)
	requests, err := f.discounts.ListRequests(f.ctx, admin, nil)
	require.NoError(t, err)
	assert.Empty(t, requests)
	assert.Contains(t, f.topics(), model.TopicOrderDeleted)

	assert.ErrorIs(t, f.orders.DeleteOrder(f.ctx, repAlice, order.ID), domainErrors.ErrNotFound)
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	f := newFixture(t, "0")
	const buyers = 25
	p := f.product("LAST", "9.99", buyers-1, 0)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		placed  int
		refused int
	)
	for i := 0; i < buyers; i++ {
		actor := model.Actor{UserID: int64(100 + i), Role: model.RoleSalesRep}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.orders.CreateOrder(f.ctx, actor, CreateOrderInput{Items: []model.LineRequest{line(p.ID, 1)}})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				placed++
			case errors.Is(err, domainErrors.ErrInsufficientStock):
				refused++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, buyers-1, placed)
	assert.Equal(t, 1, refused)
	assert.Equal(t, 0, f.stock(p.ID))

	orders, err := f.orders.ListOrders(f.ctx, admin, nil)
	require.NoError(t, err)
	assert.Len(t, orders, buyers-1)
}

func TestConcurrentEditsKeepStockConsistent(t *testing.T) {
	f := newFixture(t, "0")
	p := f.product("P", "1", 30, 0)

	orders := make([]*model.Order, 5)
	for i := range orders {
		orders[i] = f.order(repAlice, line(p.ID, 1))
	}

	var wg sync.WaitGroup
	for i, o := range orders {
		wg.Add(1)
		go func(i int, o *model.Order) {
			defer wg.Done()
			switch i % 3 {
			case 0:
				_, _ = f.orders.UpdateOrder(f.ctx, repAlice, o.ID, UpdateOrderInput{Items: []model.LineRequest{line(p.ID, 4)}})
			case 1:
				_, _ = f.orders.CancelOrder(f.ctx, repAlice, o.ID)
			default:
				_ = f.orders.DeleteOrder(f.ctx, repAlice, o.ID)
			}
		}(i, o)
	}
	wg.Wait()

	reserved := 0
	live, err := f.orders.ListOrders(f.ctx, admin, nil)
	require.NoError(t, err)
	for _, o := range live {
		if o.Status == model.OrderStatusCancelled {
			continue
		}
		full := f.reload(o.ID)
		reserved += full.Quantities()[p.ID]
	}
	assert.Equal(t, 30, f.stock(p.ID)+reserved)
}
