package worker

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/retailpos/internal/domain/model"
	"github.com/polkiloo/retailpos/internal/domain/repository"
	"github.com/polkiloo/retailpos/internal/metrics"
)

// Publisher delivers outbox events to the message broker.
type Publisher interface {
	Publish(ctx context.Context, events []model.OutboxEvent) error
}

// outboxLease bounds how long a claimed event stays hidden from other drains
// if the relay never completes it.
const outboxLease = time.Minute

type job struct {
	events []model.OutboxEvent
	result chan<- []string
}

// OutboxRelay drains committed outbox events to the broker with a pool of
// publishers. Events sharing a key go to the same publisher in commit order;
// a shard that fails stays pending and is retried on the next tick.
type OutboxRelay struct {
	store        repository.Store
	publisher    Publisher
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger
	metrics      *metrics.Metrics

	jobs   chan job
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewOutboxRelay constructs the relay worker pool.
func NewOutboxRelay(
	store repository.Store,
	publisher Publisher,
	pollInterval time.Duration,
	batchSize, workers int,
	logger *slog.Logger,
	m *metrics.Metrics,
) *OutboxRelay {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &OutboxRelay{
		store:        store,
		publisher:    publisher,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		metrics:      m,
		jobs:         make(chan job),
	}
}

// Start launches background processing. The relay keeps running after ctx
// is done; Stop ends it.
func (r *OutboxRelay) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.cancel = cancel
	r.jobs = make(chan job)

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx, r.jobs)
	}

	r.wg.Add(1)
	go r.dispatch(runCtx, r.jobs)
}

// Stop waits for all workers to finish.
func (r *OutboxRelay) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *OutboxRelay) dispatch(ctx context.Context, jobs chan job) {
	defer r.wg.Done()
	defer close(jobs)
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for r.drain(ctx, jobs) == r.batchSize {
				// full batch, more may be waiting
				if ctx.Err() != nil {
					return
				}
			}
		}
	}
}

// drain publishes one batch and returns how many events were acknowledged.
func (r *OutboxRelay) drain(ctx context.Context, jobs chan<- job) int {
	if leaser, ok := r.store.(repository.OutboxLeaser); ok {
		return r.drainLeased(ctx, jobs, leaser)
	}

	var acked int
	err := r.store.WithinTransaction(ctx, func(tx repository.Factory) error {
		events, err := tx.Outbox().ListPending(ctx, r.batchSize)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}
		published := r.publish(ctx, jobs, events)
		acked = len(published)
		return tx.Outbox().MarkPublished(ctx, published)
	})
	if err != nil && ctx.Err() == nil {
		r.logger.Error("outbox drain failed", slog.String("error", err.Error()))
		return 0
	}
	return acked
}

// drainLeased claims a batch, publishes it without holding the store and
// then settles the claim.
func (r *OutboxRelay) drainLeased(ctx context.Context, jobs chan<- job, leaser repository.OutboxLeaser) int {
	events, err := leaser.LeasePending(ctx, r.batchSize, outboxLease)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error("outbox lease failed", slog.String("error", err.Error()))
		}
		return 0
	}
	if len(events) == 0 {
		return 0
	}

	leased := make([]string, 0, len(events))
	for _, e := range events {
		leased = append(leased, e.ID)
	}
	published := r.publish(ctx, jobs, events)
	if err := leaser.CompleteLease(context.WithoutCancel(ctx), leased, published); err != nil {
		r.logger.Error("outbox lease completion failed", slog.String("error", err.Error()))
		return 0
	}
	return len(published)
}

func (r *OutboxRelay) publish(ctx context.Context, jobs chan<- job, events []model.OutboxEvent) []string {
	shards := make([][]model.OutboxEvent, r.workers)
	for _, e := range events {
		i := shardOf(e.Key, r.workers)
		shards[i] = append(shards[i], e)
	}

	var pending []chan []string
	for _, shard := range shards {
		if len(shard) == 0 {
			continue
		}
		result := make(chan []string, 1)
		select {
		case <-ctx.Done():
			return collect(pending)
		case jobs <- job{events: shard, result: result}:
			pending = append(pending, result)
		}
	}
	return collect(pending)
}

func collect(results []chan []string) []string {
	var ids []string
	for _, ch := range results {
		ids = append(ids, <-ch...)
	}
	return ids
}

func (r *OutboxRelay) worker(ctx context.Context, jobs <-chan job) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			j.result <- r.handle(ctx, j.events)
		}
	}
}

func (r *OutboxRelay) handle(ctx context.Context, events []model.OutboxEvent) []string {
	if err := r.publisher.Publish(ctx, events); err != nil {
		r.metrics.OutboxFailures.Inc()
		r.logger.Warn("publish events failed",
			slog.Int("count", len(events)),
			slog.String("first_event", events[0].ID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
		r.metrics.OutboxPublished.WithLabelValues(e.Topic).Inc()
	}
	return ids
}

func shardOf(key string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}
