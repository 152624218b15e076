package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore implements usecase.IdempotencyStore using Redis.
type IdempotencyStore struct {
	client *redis.Client
	prefix string
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		prefix: "idempotency:",
	}
}

// CheckAndSet atomically checks if a key exists. If it exists, returns the
// stored response. If not, stores a processing placeholder and returns
// exists=false so the caller can run the movement.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	fullKey := s.prefix + key

	val, err := s.client.Get(ctx, fullKey).Bytes()
	if err == nil {
		return true, val, nil
	}
	if !errors.Is(err, redis.Nil) {
		return false, nil, err
	}

	if response != nil {
		if err := s.client.Set(ctx, fullKey, response, ttl).Err(); err != nil {
			return false, nil, err
		}
		return false, nil, nil
	}

	ok, err := s.client.SetNX(ctx, fullKey, []byte("processing"), ttl).Result()
	if err != nil {
		return false, nil, err
	}
	if !ok {
		// Lost the race, another request got here first.
		val, err := s.client.Get(ctx, fullKey).Bytes()
		if err != nil {
			return false, nil, err
		}
		return true, val, nil
	}
	return false, nil, nil
}

// Update replaces the stored value for a key with the final response.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, response, ttl).Err()
}
