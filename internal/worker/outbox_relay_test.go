package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/polkiloo/retailpos/internal/domain/model"
	"github.com/polkiloo/retailpos/internal/domain/repository"
	"github.com/polkiloo/retailpos/internal/metrics"
	"github.com/polkiloo/retailpos/internal/storage/memory"
	testhelpers "github.com/polkiloo/retailpos/internal/test"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.OutboxEvent
	fail   map[string]bool
}

func (p *recordingPublisher) Publish(_ context.Context, events []model.OutboxEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range events {
		if p.fail[e.Key] {
			return errors.New("broker unavailable")
		}
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) snapshot() []model.OutboxEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.OutboxEvent(nil), p.events...)
}

// blockingPublisher holds every Publish call until release is closed.
type blockingPublisher struct {
	recordingPublisher
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (p *blockingPublisher) Publish(ctx context.Context, events []model.OutboxEvent) error {
	p.once.Do(func() { close(p.entered) })
	select {
	case <-p.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return p.recordingPublisher.Publish(ctx, events)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func event(id, key string) model.OutboxEvent {
	return model.OutboxEvent{ID: id, Topic: "order.created", Key: key, Payload: []byte(`{}`), CreatedAt: time.Now()}
}

func TestOutboxRelayPublishesPendingEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := memory.New()
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if err := store.Outbox().Append(ctx, event(fmt.Sprintf("e%02d", i), fmt.Sprint(i%3))); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	pub := &recordingPublisher{}
	relay := NewOutboxRelay(store, pub, 5*time.Millisecond, 4, 3, discardLogger(), metrics.New(nil))
	relay.Start(ctx)
	defer relay.Stop()

	waitFor(t, func() bool {
		pending, err := store.Outbox().ListPending(ctx, 0)
		return err == nil && len(pending) == 0
	})

	got := pub.snapshot()
	if len(got) != 10 {
		t.Fatalf("expected 10 published events, got %d", len(got))
	}
	last := map[string]string{}
	for _, e := range got {
		if prev, ok := last[e.Key]; ok && prev > e.ID {
			t.Fatalf("key %s published out of order: %s after %s", e.Key, e.ID, prev)
		}
		last[e.Key] = e.ID
	}
}

func TestOutboxRelayKeepsFailedShardPending(t *testing.T) {
	defer goleak.VerifyNone(t)

	outbox := &testhelpers.OutboxRepositoryStub{Batches: [][]model.OutboxEvent{{
		event("a1", "ok"), event("b1", "bad"), event("a2", "ok"),
	}}}
	store := &testhelpers.OutboxStoreStub{Events: outbox}
	pub := &recordingPublisher{fail: map[string]bool{"bad": true}}
	m := metrics.New(nil)

	relay := NewOutboxRelay(store, pub, 5*time.Millisecond, 10, 1, discardLogger(), m)
	relay.Start(context.Background())
	waitFor(t, func() bool { return len(outbox.PublishedIDs()) > 0 || failures(t, m) > 0 })
	relay.Stop()

	if ids := outbox.PublishedIDs(); len(ids) != 0 {
		t.Fatalf("single shard with a failing event must stay pending, got %v", ids)
	}
	if failures(t, m) == 0 {
		t.Fatal("expected failure to be counted")
	}
}

func TestOutboxRelayMarksOnlySuccessfulShards(t *testing.T) {
	defer goleak.VerifyNone(t)

	okKey, badKey := "1", "2"
	for shardOf(okKey, 2) == shardOf(badKey, 2) {
		badKey += "x"
	}

	outbox := &testhelpers.OutboxRepositoryStub{Batches: [][]model.OutboxEvent{{
		event("a1", okKey), event("b1", badKey),
	}}}
	store := &testhelpers.OutboxStoreStub{Events: outbox}
	pub := &recordingPublisher{fail: map[string]bool{badKey: true}}

	relay := NewOutboxRelay(store, pub, 5*time.Millisecond, 10, 2, discardLogger(), metrics.New(nil))
	relay.Start(context.Background())
	waitFor(t, func() bool { return len(outbox.PublishedIDs()) > 0 })
	relay.Stop()

	ids := outbox.PublishedIDs()
	if len(ids) != 1 || ids[0] != "a1" {
		t.Fatalf("unexpected acknowledged ids: %v", ids)
	}
}

func TestOutboxRelaySurvivesListError(t *testing.T) {
	defer goleak.VerifyNone(t)

	outbox := &testhelpers.OutboxRepositoryStub{ListErr: errors.New("db down")}
	relay := NewOutboxRelay(&testhelpers.OutboxStoreStub{Events: outbox}, &recordingPublisher{}, 5*time.Millisecond, 1, 1, discardLogger(), metrics.New(nil))
	relay.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	relay.Stop()

	if len(outbox.PublishedIDs()) != 0 {
		t.Fatal("nothing should be acknowledged")
	}
}

func TestOutboxRelayOutlivesStartContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := memory.New()
	pub := &recordingPublisher{}
	relay := NewOutboxRelay(store, pub, 5*time.Millisecond, 10, 1, discardLogger(), metrics.New(nil))

	startCtx, cancel := context.WithCancel(context.Background())
	relay.Start(startCtx)
	relay.Start(startCtx)
	cancel()

	if err := store.Outbox().Append(context.Background(), event("late", "k")); err != nil {
		t.Fatalf("append: %v", err)
	}
	waitFor(t, func() bool { return len(pub.snapshot()) == 1 })
	relay.Stop()
	relay.Stop()
}

func TestOutboxRelayPublishesOutsideStoreLock(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := memory.New()
	ctx := context.Background()
	if err := store.Outbox().Append(ctx, event("e1", "k")); err != nil {
		t.Fatalf("append: %v", err)
	}

	pub := &blockingPublisher{entered: make(chan struct{}), release: make(chan struct{})}
	relay := NewOutboxRelay(store, pub, 5*time.Millisecond, 10, 1, discardLogger(), metrics.New(nil))
	relay.Start(ctx)
	defer relay.Stop()

	select {
	case <-pub.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher was never called")
	}

	done := make(chan error, 1)
	go func() {
		done <- store.WithinTransaction(ctx, func(tx repository.Factory) error {
			return tx.Outbox().Append(ctx, event("e2", "k"))
		})
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("transaction: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("transaction waited for the publisher")
	}

	close(pub.release)
	waitFor(t, func() bool {
		pending, err := store.Outbox().ListPending(ctx, 0)
		return err == nil && len(pending) == 0
	})
	got := pub.snapshot()
	if len(got) != 2 || got[0].ID != "e1" || got[1].ID != "e2" {
		t.Fatalf("unexpected publish order: %v", got)
	}
}

func TestOutboxRelayRetriesFailedLease(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := memory.New()
	ctx := context.Background()
	if err := store.Outbox().Append(ctx, event("e1", "bad")); err != nil {
		t.Fatalf("append: %v", err)
	}

	pub := &recordingPublisher{fail: map[string]bool{"bad": true}}
	m := metrics.New(nil)
	relay := NewOutboxRelay(store, pub, 5*time.Millisecond, 10, 1, discardLogger(), m)
	relay.Start(ctx)
	defer relay.Stop()

	waitFor(t, func() bool { return failures(t, m) > 0 })
	if pending, _ := store.Outbox().ListPending(ctx, 0); len(pending) != 1 {
		t.Fatalf("failed event must stay pending, got %v", pending)
	}

	pub.mu.Lock()
	pub.fail = nil
	pub.mu.Unlock()

	waitFor(t, func() bool { return len(pub.snapshot()) == 1 })
	waitFor(t, func() bool {
		pending, err := store.Outbox().ListPending(ctx, 0)
		return err == nil && len(pending) == 0
	})
}

func TestNewOutboxRelayDefaults(t *testing.T) {
	relay := NewOutboxRelay(memory.New(), &recordingPublisher{}, 0, 0, 0, discardLogger(), metrics.New(nil))
	if relay.workers != 1 || relay.batchSize != 1 || relay.pollInterval != time.Second {
		t.Fatalf("unexpected defaults: workers=%d batch=%d interval=%v", relay.workers, relay.batchSize, relay.pollInterval)
	}
}

func failures(t *testing.T, m *metrics.Metrics) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() == "retailpos_outbox_publish_failures_total" {
			return f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}
