package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/polkiloo/retailpos/internal/domain/model"
)

// messageWriter is implemented by *kafka.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher sends outbox events to kafka. The topic of each message is the
// event topic and the key is the aggregate id, so events of one order stay
// in one partition.
type Publisher struct {
	writer messageWriter
}

// NewWriter builds a synchronous writer: WriteMessages returns only after the
// brokers acknowledged the batch.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
}

// NewPublisher wraps writer.
func NewPublisher(writer messageWriter) *Publisher {
	return &Publisher{writer: writer}
}

// Publish writes all events or returns an error.
func (p *Publisher) Publish(ctx context.Context, events []model.OutboxEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msgs = append(msgs, kafka.Message{
			Topic: e.Topic,
			Key:   []byte(e.Key),
			Value: e.Payload,
			Time:  e.CreatedAt,
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(e.ID)},
				{Key: "content-type", Value: []byte("application/json")},
			},
		})
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d messages: %w", len(msgs), err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// LogPublisher stands in for kafka when no brokers are configured: it logs
// the events and reports them as delivered.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs every event at debug level.
func (p *LogPublisher) Publish(ctx context.Context, events []model.OutboxEvent) error {
	for _, e := range events {
		p.logger.DebugContext(ctx, "event published",
			slog.String("event_id", e.ID),
			slog.String("topic", e.Topic),
			slog.String("key", e.Key),
		)
	}
	return nil
}

// Close is a no-op.
func (p *LogPublisher) Close() error { return nil }
