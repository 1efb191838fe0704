// Package lock provides per-user mutual exclusion for read-modify-write sequences.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when the lock could not be taken within the wait limit.
var ErrNotAcquired = errors.New("lock not acquired")

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements a per-user lock shared by all server instances.
type RedisLocker struct {
	client   *redis.Client
	prefix   string
	ttl      time.Duration
	retry    time.Duration
	maxWait  time.Duration
	newToken func() string
}

// NewRedisLocker creates a RedisLocker. ttl bounds how long a crashed holder blocks others.
func NewRedisLocker(client *redis.Client, prefix string, ttl time.Duration) *RedisLocker {
	if prefix == "" {
		prefix = "lock:user"
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{
		client:   client,
		prefix:   prefix,
		ttl:      ttl,
		retry:    50 * time.Millisecond,
		maxWait:  10 * time.Second,
		newToken: uuid.NewString,
	}
}

// key returns the Redis key for a user lock.
func (l *RedisLocker) key(userID uint) string {
	return fmt.Sprintf("%s:%d", l.prefix, userID)
}

// Lock blocks until the user's lock is held, ctx is done or maxWait elapses.
// The returned function releases the lock and is safe to call once.
func (l *RedisLocker) Lock(ctx context.Context, userID uint) (func(), error) {
	key := l.key(userID)
	token := l.newToken()
	deadline := time.Now().Add(l.maxWait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			var once sync.Once
			return func() { once.Do(func() { l.release(key, token) }) }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrNotAcquired, key)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}

func (l *RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		slog.Warn("failed to release lock", "key", key, "error", err)
	}
}
