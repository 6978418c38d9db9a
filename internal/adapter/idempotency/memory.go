package idempotency

import (
	"context"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/retailpos/internal/domain/errors"
)

type entry struct {
	orderID int64
	done    bool
	expires time.Time
}

// MemoryStore keeps idempotency keys in process memory. Used when no redis
// address is configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates an empty store whose keys expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry), ttl: ttl, now: time.Now}
}

// Claim marks key as in progress unless it is already known.
func (s *MemoryStore) Claim(_ context.Context, key string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evict(now)
	if e, ok := s.entries[key]; ok {
		if !e.done {
			return 0, false, domainErrors.ErrIdempotencyInFlight
		}
		return e.orderID, false, nil
	}
	s.entries[key] = entry{expires: now.Add(s.ttl)}
	return 0, true, nil
}

// Complete stores the order created under key.
func (s *MemoryStore) Complete(_ context.Context, key string, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{orderID: orderID, done: true, expires: s.now().Add(s.ttl)}
	return nil
}

// Release forgets key so the request can be retried.
func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) evict(now time.Time) {
	for k, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, k)
		}
	}
}
