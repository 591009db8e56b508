package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// FixedWindowLimiter counts hits per key in Redis:
// INCR key; on the first hit PEXPIRE key window.
type FixedWindowLimiter struct {
	rdb *goredis.Client
}

func NewFixedWindowLimiter(c *Client) *FixedWindowLimiter {
	if c == nil {
		return &FixedWindowLimiter{}
	}
	return &FixedWindowLimiter{rdb: c.rdb}
}

type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration // 0 if allowed
	ResetAt    time.Time
	Count      int
}

// Key builds the counter key for one scope (login, register, ...) and one
// caller identity.
func Key(scope, identity string) string {
	return "rl:" + scope + ":" + identity
}

// Enabled reports whether a Redis client is attached. Callers fall back to
// an in-process limiter when it is not.
func (l *FixedWindowLimiter) Enabled() bool { return l.rdb != nil }

const fixedWindowLua = `
local c = redis.call("INCR", KEYS[1])
if c == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {c, ttl}
`

// Allow records one hit for key. limit <= 0 disables limiting.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	if limit <= 0 {
		return Decision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}
	if window < time.Millisecond {
		window = time.Minute
	}
	if l.rdb == nil {
		return Decision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}

	res, err := l.rdb.Eval(ctx, fixedWindowLua, []string{key}, window.Milliseconds()).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit redis eval: %w", err)
	}
	arr, ok := res.([]any)
	if !ok || len(arr) != 2 {
		return Decision{}, fmt.Errorf("ratelimit redis eval: unexpected result %T", res)
	}
	count, ok1 := arr[0].(int64)
	ttlms, ok2 := arr[1].(int64)
	if !ok1 || !ok2 {
		return Decision{}, fmt.Errorf("ratelimit redis eval: unexpected result types")
	}
	ttl := time.Duration(ttlms) * time.Millisecond

	d := Decision{
		Allowed:   int(count) <= limit,
		Limit:     limit,
		Remaining: max(0, limit-int(count)),
		Count:     int(count),
		ResetAt:   time.Now().Add(ttl),
	}
	if !d.Allowed {
		d.RetryAfter = window
		if ttl > 0 {
			d.RetryAfter = ttl
		}
	}
	return d, nil
}
