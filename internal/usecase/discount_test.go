package usecase

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/retailpos/internal/domain/errors"
	"github.com/polkiloo/retailpos/internal/domain/model"
)

func TestFileRequestValidation(t *testing.T) {
	f := newFixture(t, "0")
	p := f.product("A", "100", 10, 0)
	order := f.order(repAlice, line(p.ID, 2))
	submitted := f.submitted(repAlice, line(p.ID, 1))

	cases := []struct {
		name    string
		actor   model.Actor
		orderID int64
		amount  string
		want    error
	}{
		{"accountant", accountant, order.ID, "10", domainErrors.ErrForbidden},
		{"zero amount", repAlice, order.ID, "0", domainErrors.ErrInvalidAmount},
		{"negative amount", repAlice, order.ID, "-1", domainErrors.ErrInvalidAmount},
		{"above total", repAlice, order.ID, "200.01", domainErrors.ErrInvalidAmount},
		{"not owner", repBob, order.ID, "10", domainErrors.ErrInvalidOrderState},
		{"submitted order", repAlice, submitted.ID, "10", domainErrors.ErrInvalidOrderState},
		{"missing order", repAlice, 999, "10", domainErrors.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.discounts.FileRequest(f.ctx, tc.actor, tc.orderID, decimal.RequireFromString(tc.amount), "")
			assert.ErrorIs(t, err, tc.want)
		})
	}

	req, err := f.discounts.FileRequest(f.ctx, repAlice, order.ID, decimal.RequireFromString("200"), "loyal customer")
	require.NoError(t, err)
	assert.Equal(t, model.DiscountStatusPending, req.Status)
	assert.Equal(t, repAlice.UserID, req.RequestedBy)
	assert.Contains(t, f.topics(), model.TopicDiscountFiled)
}

func TestApproveAfterSubmitKeepsRequestPending(t *testing.T) {
	f := newFixture(t, "0")
	p := f.product("A", "100", 10, 0)
	order := f.order(repAlice, line(p.ID, 1))
	req, err := f.discounts.FileRequest(f.ctx, repAlice, order.ID, decimal.RequireFromString("10"), "")
	require.NoError(t, err)
	_, err = f.orders.SubmitOrder(f.ctx, repAlice, order.ID)
	require.NoError(t, err)

	_, err = f.discounts.Approve(f.ctx, admin, req.ID, "late")
	require.ErrorIs(t, err, domainErrors.ErrInvalidOrderState)

	stored, err := f.discounts.GetRequest(f.ctx, admin, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DiscountStatusPending, stored.Status)
	assertMoney(t, "100", f.reload(order.ID).Total)

	rejected, err := f.discounts.Reject(f.ctx, manager, req.ID, "order already submitted")
	require.NoError(t, err)
	assert.Equal(t, model.DiscountStatusRejected, rejected.Status)
}

func TestRejectLeavesOrderUntouched(t *testing.T) {
	f := newFixture(t, "0")
	p := f.product("A", "100", 10, 0)
	order := f.order(repAlice, line(p.ID, 1))
	req, err := f.discounts.FileRequest(f.ctx, repAlice, order.ID, decimal.RequireFromString("10"), "")
	require.NoError(t, err)

	_, err = f.discounts.Reject(f.ctx, repAlice, req.ID, "")
	assert.ErrorIs(t, err, domainErrors.ErrForbidden)
	_, err = f.discounts.Reject(f.ctx, accountant, req.ID, "")
	assert.ErrorIs(t, err, domainErrors.ErrForbidden)

	rejected, err := f.discounts.Reject(f.ctx, manager, req.ID, "no")
	require.NoError(t, err)
	assert.Equal(t, model.DiscountStatusRejected, rejected.Status)
	require.NotNil(t, rejected.ReviewedBy)
	assert.Equal(t, manager.UserID, *rejected.ReviewedBy)
	assert.NotNil(t, rejected.ReviewedAt)
	assert.Equal(t, "no", rejected.AdminNotes)

	stored := f.reload(order.ID)
	assertMoney(t, "0", stored.Discount)
	assertMoney(t, "100", stored.Total)

	_, err = f.discounts.Approve(f.ctx, admin, req.ID, "")
	assert.ErrorIs(t, err, domainErrors.ErrInvalidTransition)
	assert.Contains(t, f.topics(), model.TopicDiscountRejected)

	_, err = f.discounts.Approve(f.ctx, admin, 999, "")
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)
}

func TestApproveFailsWhenAmountExceedsCurrentTotal(t *testing.T) {
	f := newFixture(t, "0")
	p := f.product("A", "100", 10, 0)
	order := f.order(repAlice, line(p.ID, 1))

	first, err := f.discounts.FileRequest(f.ctx, repAlice, order.ID, decimal.RequireFromString("80"), "")
	require.NoError(t, err)
	second, err := f.discounts.FileRequest(f.ctx, repAlice, order.ID, decimal.RequireFromString("50"), "")
	require.NoError(t, err)

	_, err = f.discounts.Approve(f.ctx, admin, first.ID, "")
	require.NoError(t, err)
	_, err = f.discounts.Approve(f.ctx, admin, second.ID, "")
	require.ErrorIs(t, err, domainErrors.ErrInvalidAmount)

	stored, err := f.discounts.GetRequest(f.ctx, repAlice, second.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DiscountStatusPending, stored.Status)
	assertMoney(t, "20", f.reload(order.ID).Total)
}

func TestListAndGetRequestsVisibility(t *testing.T) {
	f := newFixture(t, "0")
	p := f.product("A", "100", 10, 0)
	mine := f.order(repAlice, line(p.ID, 1))
	theirs := f.order(repBob, line(p.ID, 1))

	own, err := f.discounts.FileRequest(f.ctx, repAlice, mine.ID, decimal.RequireFromString("1"), "")
	require.NoError(t, err)
	other, err := f.discounts.FileRequest(f.ctx, repBob, theirs.ID, decimal.RequireFromString("2"), "")
	require.NoError(t, err)
	_, err = f.discounts.Approve(f.ctx, admin, other.ID, "")
	require.NoError(t, err)

	list, err := f.discounts.ListRequests(f.ctx, repAlice, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, own.ID, list[0].ID)

	all, err := f.discounts.ListRequests(f.ctx, admin, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending := model.DiscountStatusPending
	onlyPending, err := f.discounts.ListRequests(f.ctx, manager, &pending)
	require.NoError(t, err)
	require.Len(t, onlyPending, 1)
	assert.Equal(t, own.ID, onlyPending[0].ID)

	_, err = f.discounts.GetRequest(f.ctx, repAlice, other.ID)
	assert.ErrorIs(t, err, domainErrors.ErrForbidden)
	_, err = f.discounts.ListRequests(f.ctx, model.Actor{}, nil)
	assert.ErrorIs(t, err, domainErrors.ErrForbidden)
}
