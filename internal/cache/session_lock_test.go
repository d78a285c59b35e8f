package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/config"
)

func newTestLock(t *testing.T, ttl time.Duration) (*RedisSessionLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionLock(client, ttl), mr
}

func TestSessionLockExclusive(t *testing.T) {
	lock, mr := newTestLock(t, time.Minute)
	ctx := context.Background()

	release, err := lock.Acquire(ctx, 7)
	require.NoError(t, err)
	assert.True(t, mr.Exists("ims:session:7"))

	_, err = lock.Acquire(ctx, 7)
	require.ErrorIs(t, err, ErrSessionActive)

	other, err := lock.Acquire(ctx, 8)
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("ims:session:7"))

	_, err = lock.Acquire(ctx, 7)
	require.NoError(t, err)
}

func TestSessionLockExpires(t *testing.T) {
	lock, mr := newTestLock(t, time.Minute)
	ctx := context.Background()

	stale, err := lock.Acquire(ctx, 1)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	fresh, err := lock.Acquire(ctx, 1)
	require.NoError(t, err)

	// The expired holder must not remove the new holder's key.
	require.NoError(t, stale(ctx))
	assert.True(t, mr.Exists("ims:session:1"))
	require.NoError(t, fresh(ctx))
	assert.False(t, mr.Exists("ims:session:1"))
}

func TestSessionLockRefresh(t *testing.T) {
	lock, mr := newTestLock(t, time.Minute)
	ctx := context.Background()

	require.ErrorIs(t, lock.Refresh(ctx, 3), ErrSessionLost)

	release, err := lock.Acquire(ctx, 3)
	require.NoError(t, err)

	// Refreshing before expiry keeps the session alive past the original TTL.
	mr.FastForward(50 * time.Second)
	require.NoError(t, lock.Refresh(ctx, 3))
	mr.FastForward(50 * time.Second)
	assert.True(t, mr.Exists("ims:session:3"))
	require.NoError(t, lock.Refresh(ctx, 3))

	// Once expired and taken by another holder, refresh reports the loss
	// and leaves the new holder's key alone.
	mr.FastForward(2 * time.Minute)
	other := NewRedisSessionLock(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	t.Cleanup(func() { _ = other.Close() })
	_, err = other.Acquire(ctx, 3)
	require.NoError(t, err)

	require.ErrorIs(t, lock.Refresh(ctx, 3), ErrSessionLost)
	require.NoError(t, release(ctx))
	assert.True(t, mr.Exists("ims:session:3"))
	require.NoError(t, other.Refresh(ctx, 3))

	require.ErrorIs(t, lock.Refresh(ctx, 3), ErrSessionLost, "released sessions cannot be refreshed")
}

func TestNewSessionLockFromConfig(t *testing.T) {
	ctx := context.Background()

	noop, err := NewSessionLock(ctx, config.CacheConfig{})
	require.NoError(t, err)
	release, err := noop.Acquire(ctx, 1)
	require.NoError(t, err)
	_, err = noop.Acquire(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, release(ctx))

	mr := miniredis.RunT(t)
	lock, err := NewSessionLock(ctx, config.CacheConfig{Enabled: true, RedisURL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	defer lock.Close()
	_, err = lock.Acquire(ctx, 1)
	require.NoError(t, err)
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisHost: "cache", RedisPort: "6380", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	opts, err = buildRedisOptions(config.CacheConfig{})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "://bad"})
	assert.Error(t, err)
}
