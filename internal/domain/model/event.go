package model

import (
	"encoding/json"
	"time"
)

// Event topics published through the outbox.
const (
	TopicOrderCreated       = "pos.order.created"
	TopicOrderUpdated       = "pos.order.updated"
	TopicOrderSubmitted     = "pos.order.submitted"
	TopicOrderCancelled     = "pos.order.cancelled"
	TopicOrderDeleted       = "pos.order.deleted"
	TopicOrderPaid          = "pos.order.paid"
	TopicDiscountFiled      = "pos.discount.filed"
	TopicDiscountApproved   = "pos.discount.approved"
	TopicDiscountRejected   = "pos.discount.rejected"
	TopicPaymentCreated     = "pos.payment.created"
	TopicPaymentConfirmed   = "pos.payment.confirmed"
	TopicInventoryLowStock  = "pos.inventory.low_stock"
	TopicInventoryRestocked = "pos.inventory.restocked"
)

// Envelope wraps every published event payload.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// OutboxEvent is an envelope stored in the same transaction as the change it describes.
type OutboxEvent struct {
	ID          string
	Topic       string
	Key         string
	Payload     []byte
	CreatedAt   time.Time
	PublishedAt *time.Time
}
