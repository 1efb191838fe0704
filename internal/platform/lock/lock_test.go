package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis instance for testing.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return client, mr
}

func TestNewRedisLocker_Defaults(t *testing.T) {
	client, _ := setupTestRedis(t)

	l := NewRedisLocker(client, "", 0)

	assert.Equal(t, "lock:user", l.prefix)
	assert.Equal(t, 30*time.Second, l.ttl)
	assert.Equal(t, "lock:user:7", l.key(7))
}

func TestRedisLocker_LockAndRelease(t *testing.T) {
	client, mr := setupTestRedis(t)
	l := NewRedisLocker(client, "lock:user", 5*time.Second)

	unlock, err := l.Lock(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, mr.Exists("lock:user:1"))
	assert.Equal(t, 5*time.Second, mr.TTL("lock:user:1"))

	unlock()
	assert.False(t, mr.Exists("lock:user:1"))

	// 二重解放しても問題ない
	unlock()
}

func TestRedisLocker_Contention(t *testing.T) {
	client, _ := setupTestRedis(t)
	l := NewRedisLocker(client, "lock:user", 5*time.Second)
	l.retry = 5 * time.Millisecond

	unlock, err := l.Lock(context.Background(), 1)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		u, err := l.Lock(context.Background(), 1)
		if err == nil {
			close(acquired)
			u()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired while lock was held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("second holder never acquired the lock")
	}
}

func TestRedisLocker_DifferentUsersDoNotBlock(t *testing.T) {
	client, _ := setupTestRedis(t)
	l := NewRedisLocker(client, "lock:user", 5*time.Second)

	u1, err := l.Lock(context.Background(), 1)
	require.NoError(t, err)
	defer u1()

	u2, err := l.Lock(context.Background(), 2)
	require.NoError(t, err)
	u2()
}

func TestRedisLocker_ContextCancelled(t *testing.T) {
	client, _ := setupTestRedis(t)
	l := NewRedisLocker(client, "lock:user", 5*time.Second)
	l.retry = 5 * time.Millisecond

	unlock, err := l.Lock(context.Background(), 1)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = l.Lock(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRedisLocker_MaxWait(t *testing.T) {
	client, _ := setupTestRedis(t)
	l := NewRedisLocker(client, "lock:user", 5*time.Second)
	l.retry = 5 * time.Millisecond
	l.maxWait = 20 * time.Millisecond

	unlock, err := l.Lock(context.Background(), 1)
	require.NoError(t, err)
	defer unlock()

	_, err = l.Lock(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotAcquired)
}

func TestRedisLocker_ReleaseKeepsForeignToken(t *testing.T) {
	client, mr := setupTestRedis(t)
	l := NewRedisLocker(client, "lock:user", time.Second)

	unlock, err := l.Lock(context.Background(), 1)
	require.NoError(t, err)

	// TTL切れ後に別プロセスが取得したケースを再現する
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("lock:user:1", "someone-else"))

	unlock()

	got, err := mr.Get("lock:user:1")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestRedisLocker_RedisError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l := NewRedisLocker(db, "lock:user", time.Second)
	l.newToken = func() string { return "tok" }

	mock.ExpectSetNX("lock:user:1", "tok", time.Second).SetErr(errors.New("connection refused"))

	_, err := l.Lock(context.Background(), 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocalLocker_SerializesSameUser(t *testing.T) {
	l := NewLocalLocker()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), 1)
			if err != nil {
				t.Error(err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Zero(t, l.Len(), "entries must be removed once released")
}

func TestLocalLocker_ContextCancelled(t *testing.T) {
	l := NewLocalLocker()

	unlock, err := l.Lock(context.Background(), 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = l.Lock(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)

	unlock()
	unlock()
	assert.Zero(t, l.Len())
}

func TestLocalLocker_DifferentUsers(t *testing.T) {
	l := NewLocalLocker()

	u1, err := l.Lock(context.Background(), 1)
	require.NoError(t, err)
	u2, err := l.Lock(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 2, l.Len())
	u1()
	u2()
	assert.Zero(t, l.Len())
}
