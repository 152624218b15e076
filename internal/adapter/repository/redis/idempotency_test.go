package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyStore_FirstRequest(t *testing.T) {
	client, _ := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	exists, val, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Nil(t, val)
}

func TestIdempotencyStore_ReplayReturnsStored(t *testing.T) {
	client, _ := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	response := []byte(`{"operation_id":"op-1","status":"posted"}`)
	exists, _, err := store.CheckAndSet(ctx, "key-1", response, time.Minute)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, val, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, response, val)
}

func TestIdempotencyStore_ConcurrentPlaceholder(t *testing.T) {
	client, _ := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	exists, _, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, exists)

	// A second in-flight request sees the processing placeholder.
	exists, val, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, []byte("processing"), val)
}

func TestIdempotencyStore_Update(t *testing.T) {
	client, _ := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	_, _, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	require.NoError(t, err)

	final := []byte(`{"operation_id":"op-1","status":"posted"}`)
	require.NoError(t, store.Update(ctx, "key-1", final, time.Minute))

	exists, val, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, final, val)
}

func TestIdempotencyStore_KeyPrefix(t *testing.T) {
	client, mr := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	_, _, err := store.CheckAndSet(ctx, "key-1", []byte("done"), time.Minute)
	require.NoError(t, err)

	stored, err := mr.Get("idempotency:key-1")
	require.NoError(t, err)
	assert.Equal(t, "done", stored)
}

func TestIdempotencyStore_TTLExpiry(t *testing.T) {
	client, mr := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	_, _, err := store.CheckAndSet(ctx, "key-1", []byte("done"), time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	exists, _, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, exists)
}
