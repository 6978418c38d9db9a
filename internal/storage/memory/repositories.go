package memory

import (
	"context"
	"sort"
	"time"

	domainErrors "github.com/polkiloo/retailpos/internal/domain/errors"
	"github.com/polkiloo/retailpos/internal/domain/model"
	"github.com/polkiloo/retailpos/internal/domain/repository"
)

type userRepository struct{ factory }

func (r *userRepository) Create(_ context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	var out model.User
	err := r.run(true, func(st *state) error {
		for _, u := range st.users {
			if u.Login == login {
				return domainErrors.ErrAlreadyExists
			}
		}
		st.lastUserID++
		out = model.User{ID: st.lastUserID, Login: login, PasswordHash: passwordHash, Role: role, CreatedAt: r.now()}
		st.users[out.ID] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepository) GetByLogin(_ context.Context, login string) (*model.User, error) {
	var out *model.User
	err := r.run(false, func(st *state) error {
		for _, u := range st.users {
			if u.Login == login {
				out = &u
				return nil
			}
		}
		return domainErrors.ErrNotFound
	})
	return out, err
}

func (r *userRepository) GetByID(_ context.Context, id int64) (*model.User, error) {
	var out model.User
	err := r.run(false, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type productRepository struct{ factory }

func (r *productRepository) Create(_ context.Context, details model.ProductDetails) (*model.Product, error) {
	var out model.Product
	err := r.run(true, func(st *state) error {
		if skuTaken(st, details.SKU, 0) {
			return domainErrors.ErrAlreadyExists
		}
		st.lastProductID++
		now := r.now()
		out = model.Product{
			ID:            st.lastProductID,
			SKU:           details.SKU,
			Name:          details.Name,
			Category:      details.Category,
			Price:         details.Price,
			MinStockLevel: details.MinStockLevel,
			IsActive:      true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		st.products[out.ID] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func skuTaken(st *state, sku string, except int64) bool {
	for _, p := range st.products {
		if p.SKU == sku && p.ID != except {
			return true
		}
	}
	return false
}

func (r *productRepository) Update(_ context.Context, id int64, details model.ProductDetails) (*model.Product, error) {
	var out model.Product
	err := r.run(true, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		if skuTaken(st, details.SKU, id) {
			return domainErrors.ErrAlreadyExists
		}
		p.SKU, p.Name, p.Category = details.SKU, details.Name, details.Category
		p.Price = details.Price
		p.MinStockLevel = details.MinStockLevel
		p.UpdatedAt = r.now()
		st.products[id] = p
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *productRepository) SetActive(_ context.Context, id int64, active bool) error {
	return r.run(true, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		p.IsActive = active
		p.UpdatedAt = r.now()
		st.products[id] = p
		return nil
	})
}

func (r *productRepository) GetByID(_ context.Context, id int64) (*model.Product, error) {
	var out model.Product
	err := r.run(false, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *productRepository) GetByIDs(_ context.Context, ids []int64) (map[int64]model.Product, error) {
	out := make(map[int64]model.Product, len(ids))
	err := r.run(false, func(st *state) error {
		for _, id := range ids {
			if p, ok := st.products[id]; ok {
				out[id] = p
			}
		}
		return nil
	})
	return out, err
}

func (r *productRepository) List(_ context.Context, activeOnly bool) ([]model.Product, error) {
	return r.filter(func(p model.Product) bool { return !activeOnly || p.IsActive }, func(a, b model.Product) bool {
		return a.SKU < b.SKU
	})
}

func (r *productRepository) ListLowStock(context.Context) ([]model.Product, error) {
	return r.filter(func(p model.Product) bool { return p.IsActive && p.LowOnStock() }, func(a, b model.Product) bool {
		if a.Quantity != b.Quantity {
			return a.Quantity < b.Quantity
		}
		return a.SKU < b.SKU
	})
}

func (r *productRepository) filter(keep func(model.Product) bool, less func(a, b model.Product) bool) ([]model.Product, error) {
	out := make([]model.Product, 0)
	err := r.run(false, func(st *state) error {
		for _, p := range st.products {
			if keep(p) {
				out = append(out, p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, err
}

func (r *productRepository) Reserve(_ context.Context, id int64, qty int) (int, error) {
	if qty < 1 {
		return 0, domainErrors.ErrInvalidInput
	}
	var remaining int
	err := r.run(true, func(st *state) error {
		p, ok := st.products[id]
		if !ok || !p.IsActive {
			return domainErrors.ErrNotFound
		}
		if p.Quantity < qty {
			return &domainErrors.StockError{ProductID: id, Requested: qty, Available: p.Quantity}
		}
		p.Quantity -= qty
		p.UpdatedAt = r.now()
		st.products[id] = p
		remaining = p.Quantity
		return nil
	})
	return remaining, err
}

func (r *productRepository) Release(_ context.Context, id int64, qty int) (int, error) {
	if qty < 1 {
		return 0, domainErrors.ErrInvalidInput
	}
	var remaining int
	err := r.run(true, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		if qty > model.MaxQuantity-p.Quantity {
			return domainErrors.ErrInvalidInput
		}
		p.Quantity += qty
		p.UpdatedAt = r.now()
		st.products[id] = p
		remaining = p.Quantity
		return nil
	})
	return remaining, err
}

type orderRepository struct{ factory }

func (r *orderRepository) Create(_ context.Context, order *model.Order) error {
	if order.Total.IsNegative() || !validItems(order.Items) {
		return domainErrors.ErrInvalidInput
	}
	return r.run(true, func(st *state) error {
		for _, o := range st.orders {
			if o.Number == order.Number {
				return domainErrors.ErrAlreadyExists
			}
		}
		st.lastOrderID++
		now := r.now()
		order.ID = st.lastOrderID
		order.CreatedAt, order.UpdatedAt = now, now
		order.Items = assignItems(st, order.ID, order.Items)
		stored := *order
		stored.Items = append([]model.OrderItem(nil), order.Items...)
		st.orders[order.ID] = stored
		return nil
	})
}

// validItems mirrors the order_items quantity CHECK of the SQL schema.
func validItems(items []model.OrderItem) bool {
	for _, it := range items {
		if it.Quantity < 1 || it.Quantity > model.MaxQuantity {
			return false
		}
	}
	return true
}

func assignItems(st *state, orderID int64, items []model.OrderItem) []model.OrderItem {
	out := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		st.lastItemID++
		it.ID = st.lastItemID
		it.OrderID = orderID
		out = append(out, it)
	}
	return out
}

func (r *orderRepository) GetByID(_ context.Context, id int64) (*model.Order, error) {
	var out model.Order
	err := r.run(false, func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		out = o
		out.Items = append([]model.OrderItem(nil), o.Items...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate equals GetByID: the transaction already holds the writer lock.
func (r *orderRepository) GetForUpdate(ctx context.Context, id int64) (*model.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *orderRepository) List(_ context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	out := make([]model.Order, 0)
	err := r.run(false, func(st *state) error {
		for _, o := range st.orders {
			if filter.SalesRepID != nil && o.SalesRepID != *filter.SalesRepID {
				continue
			}
			if filter.Status != nil && o.Status != *filter.Status {
				continue
			}
			o.Items = nil
			out = append(out, o)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

func (r *orderRepository) ReplaceItems(_ context.Context, orderID int64, items []model.OrderItem) ([]model.OrderItem, error) {
	if !validItems(items) {
		return nil, domainErrors.ErrInvalidInput
	}
	var out []model.OrderItem
	err := r.run(true, func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok {
			return domainErrors.ErrNotFound
		}
		out = assignItems(st, orderID, items)
		o.Items = append([]model.OrderItem(nil), out...)
		st.orders[orderID] = o
		return nil
	})
	return out, err
}

func (r *orderRepository) UpdateTotals(_ context.Context, order *model.Order) error {
	if order.Total.IsNegative() {
		return domainErrors.ErrInvalidInput
	}
	return r.run(true, func(st *state) error {
		o, ok := st.orders[order.ID]
		if !ok {
			return domainErrors.ErrNotFound
		}
		o.Subtotal, o.Tax, o.Discount, o.Total = order.Subtotal, order.Tax, order.Discount, order.Total
		o.Customer = order.Customer
		o.Notes = order.Notes
		o.UpdatedAt = r.now()
		order.UpdatedAt = o.UpdatedAt
		st.orders[order.ID] = o
		return nil
	})
}

func (r *orderRepository) UpdateStatus(_ context.Context, orderID int64, status model.OrderStatus) error {
	return r.run(true, func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok {
			return domainErrors.ErrNotFound
		}
		now := r.now()
		o.Status = status
		o.UpdatedAt = now
		switch status {
		case model.OrderStatusSubmitted:
			o.SubmittedAt = &now
		case model.OrderStatusPaid:
			o.PaidAt = &now
		}
		st.orders[orderID] = o
		return nil
	})
}

func (r *orderRepository) Delete(_ context.Context, orderID int64) error {
	return r.run(true, func(st *state) error {
		if _, ok := st.orders[orderID]; !ok {
			return domainErrors.ErrNotFound
		}
		delete(st.orders, orderID)
		for id, d := range st.discounts {
			if d.OrderID == orderID {
				delete(st.discounts, id)
			}
		}
		return nil
	})
}

type discountRepository struct{ factory }

func (r *discountRepository) Create(_ context.Context, req *model.DiscountRequest) error {
	return r.run(true, func(st *state) error {
		if _, ok := st.orders[req.OrderID]; !ok {
			return domainErrors.ErrNotFound
		}
		st.lastDiscountID++
		req.ID = st.lastDiscountID
		req.CreatedAt = r.now()
		st.discounts[req.ID] = *req
		return nil
	})
}

func (r *discountRepository) GetByID(_ context.Context, id int64) (*model.DiscountRequest, error) {
	var out model.DiscountRequest
	err := r.run(false, func(st *state) error {
		d, ok := st.discounts[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *discountRepository) GetForUpdate(ctx context.Context, id int64) (*model.DiscountRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *discountRepository) List(_ context.Context, filter repository.DiscountFilter) ([]model.DiscountRequest, error) {
	out := make([]model.DiscountRequest, 0)
	err := r.run(false, func(st *state) error {
		for _, d := range st.discounts {
			if filter.OrderID != nil && d.OrderID != *filter.OrderID {
				continue
			}
			if filter.RequestedBy != nil && d.RequestedBy != *filter.RequestedBy {
				continue
			}
			if filter.Status != nil && d.Status != *filter.Status {
				continue
			}
			out = append(out, d)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, err
}

func (r *discountRepository) Review(_ context.Context, id int64, review model.DiscountReview) error {
	return r.run(true, func(st *state) error {
		d, ok := st.discounts[id]
		if !ok || d.Status != model.DiscountStatusPending {
			return domainErrors.ErrInvalidTransition
		}
		st.discounts[id] = reviewed(d, review)
		return nil
	})
}

func reviewed(d model.DiscountRequest, review model.DiscountReview) model.DiscountRequest {
	by, at := review.ReviewedBy, review.ReviewedAt
	d.Status = review.Status
	d.ReviewedBy = &by
	d.ReviewedAt = &at
	d.AdminNotes = review.Notes
	return d
}

func (r *discountRepository) RejectPendingByOrder(_ context.Context, orderID int64, review model.DiscountReview) (int64, error) {
	var n int64
	review.Status = model.DiscountStatusRejected
	err := r.run(true, func(st *state) error {
		for id, d := range st.discounts {
			if d.OrderID == orderID && d.Status == model.DiscountStatusPending {
				st.discounts[id] = reviewed(d, review)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *discountRepository) DeleteByOrder(_ context.Context, orderID int64) error {
	return r.run(true, func(st *state) error {
		for id, d := range st.discounts {
			if d.OrderID == orderID {
				delete(st.discounts, id)
			}
		}
		return nil
	})
}

type paymentRepository struct{ factory }

func (r *paymentRepository) Create(_ context.Context, payment *model.Payment) error {
	return r.run(true, func(st *state) error {
		for _, p := range st.payments {
			if p.OrderID == payment.OrderID && p.Status == model.PaymentStatusPending {
				return domainErrors.ErrPaymentPending
			}
		}
		st.lastPaymentID++
		payment.ID = st.lastPaymentID
		payment.CreatedAt = r.now()
		st.payments[payment.ID] = *payment
		return nil
	})
}

func (r *paymentRepository) GetByID(_ context.Context, id int64) (*model.Payment, error) {
	var out model.Payment
	err := r.run(false, func(st *state) error {
		p, ok := st.payments[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *paymentRepository) GetForUpdate(ctx context.Context, id int64) (*model.Payment, error) {
	return r.GetByID(ctx, id)
}

func (r *paymentRepository) ListByOrder(_ context.Context, orderID int64) ([]model.Payment, error) {
	out := make([]model.Payment, 0)
	err := r.run(false, func(st *state) error {
		for _, p := range st.payments {
			if p.OrderID == orderID {
				out = append(out, p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *paymentRepository) HasPending(_ context.Context, orderID int64) (bool, error) {
	var pending bool
	err := r.run(false, func(st *state) error {
		for _, p := range st.payments {
			if p.OrderID == orderID && p.Status == model.PaymentStatusPending {
				pending = true
				return nil
			}
		}
		return nil
	})
	return pending, err
}

func (r *paymentRepository) Confirm(_ context.Context, id int64, at time.Time) error {
	return r.run(true, func(st *state) error {
		p, ok := st.payments[id]
		if !ok || p.Status != model.PaymentStatusPending {
			return domainErrors.ErrAlreadyConfirmed
		}
		p.Status = model.PaymentStatusConfirmed
		p.ConfirmedAt = &at
		st.payments[id] = p
		return nil
	})
}

type receiptRepository struct{ factory }

func (r *receiptRepository) NextNumber(context.Context) (int64, error) {
	var n int64
	err := r.run(true, func(st *state) error {
		st.receiptSeq++
		n = st.receiptSeq
		return nil
	})
	return n, err
}

func (r *receiptRepository) Create(_ context.Context, receipt *model.Receipt) error {
	return r.run(true, func(st *state) error {
		for _, rc := range st.receipts {
			if rc.PaymentID == receipt.PaymentID || rc.Number == receipt.Number {
				return domainErrors.ErrAlreadyExists
			}
		}
		st.lastReceiptID++
		receipt.ID = st.lastReceiptID
		st.receipts[receipt.ID] = *receipt
		return nil
	})
}

func (r *receiptRepository) GetByPayment(_ context.Context, paymentID int64) (*model.Receipt, error) {
	var out *model.Receipt
	err := r.run(false, func(st *state) error {
		for _, rc := range st.receipts {
			if rc.PaymentID == paymentID {
				out = &rc
				return nil
			}
		}
		return domainErrors.ErrNotFound
	})
	return out, err
}

type outboxRepository struct{ factory }

func (r *outboxRepository) Append(_ context.Context, event model.OutboxEvent) error {
	return r.run(true, func(st *state) error {
		st.outbox = append(st.outbox, event)
		return nil
	})
}

func (r *outboxRepository) ListPending(_ context.Context, limit int) ([]model.OutboxEvent, error) {
	out := make([]model.OutboxEvent, 0)
	err := r.run(false, func(st *state) error {
		for _, e := range st.outbox {
			if e.PublishedAt != nil {
				continue
			}
			if limit > 0 && len(out) == limit {
				break
			}
			out = append(out, e)
		}
		return nil
	})
	return out, err
}

func (r *outboxRepository) MarkPublished(_ context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.run(true, func(st *state) error {
		st.prune(ids)
		return nil
	})
}

// prune removes delivered events; nothing reads them after publication.
func (st *state) prune(ids []string) {
	if len(ids) == 0 {
		return
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	kept := st.outbox[:0]
	for _, e := range st.outbox {
		if _, ok := set[e.ID]; !ok {
			kept = append(kept, e)
		}
	}
	clear(st.outbox[len(kept):])
	st.outbox = kept
}
