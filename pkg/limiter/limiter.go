// Package limiter provides fixed-window rate limiting backed by Redis, with
// an in-process fallback for single-instance deployments.
package limiter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	redispkg "github.com/belovedzguard/beloved-api/pkg/redis"
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAfter time.Duration
}

// Limiter counts requests per client identifier.
type Limiter interface {
	Allow(ctx context.Context, id string) (Decision, error)
}

// atomicIncrExpire increments the window counter, starts the window on the
// first hit and returns the count with the remaining window in ms.
var atomicIncrExpire = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// RedisLimiter is a fixed-window limiter shared by every instance pointed at
// the same Redis.
type RedisLimiter struct {
	client *redispkg.Client
	scope  string
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a limiter allowing limit hits per window for each
// identifier within scope.
func NewRedisLimiter(client *redispkg.Client, scope string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, scope: scope, limit: limit, window: window}
}

// Allow records a hit for id. Rejected hits still count.
func (l *RedisLimiter) Allow(ctx context.Context, id string) (Decision, error) {
	key := redispkg.RateLimitKey(l.scope, id)
	res, err := atomicIncrExpire.Run(ctx, l.client.Universal(), []string{key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("rate limit check failed: unexpected reply %v", res)
	}

	count := int(res[0])
	return Decision{
		Allowed:    count <= l.limit,
		Limit:      l.limit,
		Remaining:  max(l.limit-count, 0),
		ResetAfter: time.Duration(res[1]) * time.Millisecond,
	}, nil
}

// Reset clears the counter for id.
func (l *RedisLimiter) Reset(ctx context.Context, id string) error {
	if err := l.client.Universal().Del(ctx, redispkg.RateLimitKey(l.scope, id)).Err(); err != nil {
		return fmt.Errorf("failed to reset counter: %w", err)
	}
	return nil
}

// sweepThreshold bounds the per-client map of LocalLimiter.
const sweepThreshold = 10000

type fixedWindow struct {
	start time.Time
	count int
}

// LocalLimiter is the in-process counterpart of RedisLimiter: a fixed window
// per identifier that opens on the first hit and closes window later.
type LocalLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	windows map[string]*fixedWindow
	now     func() time.Time
}

// NewLocalLimiter creates an in-process limiter.
func NewLocalLimiter(limit int, window time.Duration) *LocalLimiter {
	return &LocalLimiter{
		limit:   limit,
		window:  window,
		windows: make(map[string]*fixedWindow),
		now:     time.Now,
	}
}

// Allow records a hit for id. Rejected hits still count.
func (l *LocalLimiter) Allow(_ context.Context, id string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.windows) >= sweepThreshold {
		l.sweep(now)
	}

	w, ok := l.windows[id]
	if !ok || !now.Before(w.start.Add(l.window)) {
		w = &fixedWindow{start: now}
		l.windows[id] = w
	}
	w.count++

	return Decision{
		Allowed:    w.count <= l.limit,
		Limit:      l.limit,
		Remaining:  max(l.limit-w.count, 0),
		ResetAfter: w.start.Add(l.window).Sub(now),
	}, nil
}

// Reset clears the counter for id.
func (l *LocalLimiter) Reset(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, id)
	return nil
}

// sweep drops windows that have closed; they behave exactly like absent ones.
func (l *LocalLimiter) sweep(now time.Time) {
	for id, w := range l.windows {
		if !now.Before(w.start.Add(l.window)) {
			delete(l.windows, id)
		}
	}
}
