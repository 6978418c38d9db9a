package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/retailpos/internal/domain/model"
	"github.com/polkiloo/retailpos/internal/domain/repository"
)

const (
	eventProducer = "retailpos"
	eventVersion  = 1
)

type correlationKey struct{}

// WithCorrelationID attaches the request correlation id to ctx. Events written
// while handling the request carry it.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the id stored by WithCorrelationID.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

type orderLinePayload struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type orderPayload struct {
	OrderID    int64              `json:"order_id"`
	Number     string             `json:"order_number"`
	SalesRepID int64              `json:"sales_rep_id"`
	Status     model.OrderStatus  `json:"status"`
	Subtotal   decimal.Decimal    `json:"subtotal"`
	Tax        decimal.Decimal    `json:"tax"`
	Discount   decimal.Decimal    `json:"discount"`
	Total      decimal.Decimal    `json:"total"`
	Items      []orderLinePayload `json:"items,omitempty"`
}

func newOrderPayload(order *model.Order) orderPayload {
	p := orderPayload{
		OrderID:    order.ID,
		Number:     order.Number,
		SalesRepID: order.SalesRepID,
		Status:     order.Status,
		Subtotal:   order.Subtotal,
		Tax:        order.Tax,
		Discount:   order.Discount,
		Total:      order.Total,
	}
	for _, it := range order.Items {
		p.Items = append(p.Items, orderLinePayload{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return p
}

type discountPayload struct {
	RequestID   int64                `json:"request_id"`
	OrderID     int64                `json:"order_id"`
	RequestedBy int64                `json:"requested_by"`
	Amount      decimal.Decimal      `json:"amount"`
	Status      model.DiscountStatus `json:"status"`
	ReviewedBy  *int64               `json:"reviewed_by,omitempty"`
}

type paymentPayload struct {
	PaymentID     int64               `json:"payment_id"`
	OrderID       int64               `json:"order_id"`
	AccountantID  int64               `json:"accountant_id"`
	Amount        decimal.Decimal     `json:"amount"`
	Method        model.PaymentMethod `json:"method"`
	Status        model.PaymentStatus `json:"status"`
	ReceiptNumber string              `json:"receipt_number,omitempty"`
}

type stockPayload struct {
	ProductID     int64  `json:"product_id"`
	SKU           string `json:"sku"`
	Quantity      int    `json:"quantity"`
	MinStockLevel int    `json:"min_stock_level"`
	Added         int    `json:"added,omitempty"`
}

// emit stores an event in the outbox of the running transaction.
func emit(ctx context.Context, outbox repository.OutboxRepository, topic string, key int64, payload any, now time.Time) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", topic, err)
	}

	id := uuid.NewString()
	envelope, err := json.Marshal(model.Envelope{
		EventID:       id,
		EventType:     topic,
		EventVersion:  eventVersion,
		OccurredAt:    now.UTC(),
		Producer:      eventProducer,
		CorrelationID: CorrelationID(ctx),
		Payload:       body,
	})
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", topic, err)
	}

	return outbox.Append(ctx, model.OutboxEvent{
		ID:        id,
		Topic:     topic,
		Key:       strconv.FormatInt(key, 10),
		Payload:   envelope,
		CreatedAt: now,
	})
}
