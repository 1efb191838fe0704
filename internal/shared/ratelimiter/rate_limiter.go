// Package ratelimiter はキーごとのトークンバケット方式のレート制限を提供します。
package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyedLimiter はキー（ユーザーIDなど）ごとに独立したrate.Limiterを保持します。
type KeyedLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	entries   map[string]*entry
	now       func() time.Time
	lastSwept time.Time
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedLimiter は interval あたり perInterval 回（バースト burst）を許可するリミッターを生成します。
func NewKeyedLimiter(perInterval int, interval time.Duration, burst int) *KeyedLimiter {
	if burst < 1 {
		burst = 1
	}
	return &KeyedLimiter{
		limit:   rate.Limit(float64(perInterval) / interval.Seconds()),
		burst:   burst,
		idleTTL: 10 * interval,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Allow はキーに対してリクエストを1件消費できればtrueを返します。
func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Len は保持中のキー数を返します。
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// sweep は idleTTL を超えて使われていないキーを削除します。呼び出し側でロック済みであること。
func (l *KeyedLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSwept) < l.idleTTL {
		return
	}
	l.lastSwept = now
	for k, e := range l.entries {
		if now.Sub(e.lastSeen) >= l.idleTTL {
			delete(l.entries, k)
		}
	}
}
