package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	domainErrors "github.com/polkiloo/retailpos/internal/domain/errors"
)

const (
	keyPrefix     = "retailpos:idem:order:"
	pendingMarker = "pending"
)

// keyValue is the part of the redis client the store relies on.
type keyValue interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps idempotency keys in redis so that every replica sees them.
type RedisStore struct {
	client keyValue
	ttl    time.Duration
}

// NewRedisStore creates a store whose keys expire after ttl.
func NewRedisStore(client keyValue, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Claim marks key as in progress unless it is already known.
func (s *RedisStore) Claim(ctx context.Context, key string) (int64, bool, error) {
	k := keyPrefix + key
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, k, pendingMarker, s.ttl).Result()
		if err != nil {
			return 0, false, fmt.Errorf("claim idempotency key: %w", err)
		}
		if ok {
			return 0, true, nil
		}

		val, err := s.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			// expired between the two calls
			continue
		}
		if err != nil {
			return 0, false, fmt.Errorf("read idempotency key: %w", err)
		}
		return parseEntry(val)
	}
	return 0, false, domainErrors.ErrIdempotencyInFlight
}

// Complete stores the order created under key.
func (s *RedisStore) Complete(ctx context.Context, key string, orderID int64) error {
	return s.client.Set(ctx, keyPrefix+key, strconv.FormatInt(orderID, 10), s.ttl).Err()
}

// Release forgets key so the request can be retried.
func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}

func parseEntry(val string) (int64, bool, error) {
	if val == pendingMarker {
		return 0, false, domainErrors.ErrIdempotencyInFlight
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt idempotency entry %q: %w", val, err)
	}
	return id, false, nil
}
