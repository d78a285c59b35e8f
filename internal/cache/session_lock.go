// Package cache enforces one active interactive session per account.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/config"
)

var (
	ErrSessionActive = errors.New("another session is active for this account")
	ErrSessionLost   = errors.New("session expired or was taken over")
)

const sessionKeyPrefix = "ims:session:"

// ReleaseFunc ends a session acquired with SessionLock.Acquire.
type ReleaseFunc func(ctx context.Context) error

type SessionLock interface {
	Acquire(ctx context.Context, ownerID int64) (ReleaseFunc, error)
	// Refresh extends a held session by the lock TTL. It fails with
	// ErrSessionLost once the key expired or belongs to another holder.
	Refresh(ctx context.Context, ownerID int64) error
	Close() error
}

// NewSessionLock returns a redis-backed lock when the cache is enabled and a
// noop lock otherwise.
func NewSessionLock(ctx context.Context, cfg config.CacheConfig) (SessionLock, error) {
	if !cfg.Enabled {
		return noopSessionLock{}, nil
	}
	client, ttl, err := newRedisClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewRedisSessionLock(client, ttl), nil
}

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// refreshScript extends the key only while it still holds our token.
var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

type RedisSessionLock struct {
	client *redis.Client
	ttl    time.Duration

	mu     sync.Mutex
	tokens map[int64]string
}

func NewRedisSessionLock(client *redis.Client, ttl time.Duration) *RedisSessionLock {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisSessionLock{client: client, ttl: ttl, tokens: make(map[int64]string)}
}

func (l *RedisSessionLock) Acquire(ctx context.Context, ownerID int64) (ReleaseFunc, error) {
	key := sessionKey(ownerID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire session lock: %w", err)
	}
	if !ok {
		return nil, ErrSessionActive
	}
	log.Debug().Int64("owner_id", ownerID).Dur("ttl", l.ttl).Msg("session lock acquired")

	l.mu.Lock()
	l.tokens[ownerID] = token
	l.mu.Unlock()

	return func(ctx context.Context) error {
		l.mu.Lock()
		if l.tokens[ownerID] == token {
			delete(l.tokens, ownerID)
		}
		l.mu.Unlock()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("failed to release session lock: %w", err)
		}
		return nil
	}, nil
}

func (l *RedisSessionLock) Refresh(ctx context.Context, ownerID int64) error {
	l.mu.Lock()
	token, ok := l.tokens[ownerID]
	l.mu.Unlock()
	if !ok {
		return ErrSessionLost
	}

	n, err := refreshScript.Run(ctx, l.client, []string{sessionKey(ownerID)}, token, l.ttl.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("failed to refresh session lock: %w", err)
	}
	if n == 0 {
		return ErrSessionLost
	}
	return nil
}

func (l *RedisSessionLock) Close() error {
	return l.client.Close()
}

func sessionKey(ownerID int64) string {
	return sessionKeyPrefix + strconv.FormatInt(ownerID, 10)
}

type noopSessionLock struct{}

func (noopSessionLock) Acquire(context.Context, int64) (ReleaseFunc, error) {
	return func(context.Context) error { return nil }, nil
}

func (noopSessionLock) Refresh(context.Context, int64) error { return nil }

func (noopSessionLock) Close() error { return nil }
