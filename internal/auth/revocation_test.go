package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis implements the two commands the revocation store issues.
type fakeRedis struct {
	redis.Cmdable
	keys map[string]time.Duration
	err  error
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.keys[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.keys[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisRevocationStore(t *testing.T) {
	client := &fakeRedis{keys: map[string]time.Duration{}}
	store := NewRedisRevocationStore(client, "test:revoked:")
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "session-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.MarkRevoked(ctx, "session-1", time.Now().Add(10*time.Minute)))
	ttl, ok := client.keys["test:revoked:session-1"]
	require.True(t, ok)
	assert.InDelta(t, (10 * time.Minute).Seconds(), ttl.Seconds(), 5)

	revoked, err = store.IsRevoked(ctx, "session-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, store.MarkRevoked(ctx, "session-2", time.Now().Add(-time.Minute)))
	assert.Equal(t, time.Hour, client.keys["test:revoked:session-2"])
}

func TestRedisRevocationStore_Errors(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	store := NewRedisRevocationStore(&fakeRedis{err: boom}, "")

	_, err := store.IsRevoked(context.Background(), "s")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, store.MarkRevoked(context.Background(), "s", time.Now()), boom)
}
