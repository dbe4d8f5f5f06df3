package redis

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/scoins/internal/domain"
)

//go:embed scripts/sliding_window.lua
var slidingWindowLua string

// RateLimiter counts marketplace API requests per caller key in a sliding
// window. Each caller gets a sorted set of request timestamps under
// <namespace>:ratelimit:<key>, trimmed and checked atomically by a Lua
// script so concurrent server processes share one budget.
type RateLimiter struct {
	rdb       *redis.Client
	namespace string
	script    *redis.Script
	now       func() time.Time
}

// NewRateLimiter creates a RateLimiter backed by the given Client.
func NewRateLimiter(c *Client) *RateLimiter {
	return &RateLimiter{
		rdb:       c.Underlying(),
		namespace: c.namespace,
		script:    redis.NewScript(slidingWindowLua),
		now:       time.Now,
	}
}

func (rl *RateLimiter) key(caller string) string {
	return namespacedKey(rl.namespace, "ratelimit", caller)
}

// Allow reports whether one more request from caller fits in the window and
// records it when it does. Rejected requests are not recorded.
func (rl *RateLimiter) Allow(ctx context.Context, caller string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return false, nil
	}
	result, err := rl.script.Run(
		ctx,
		rl.rdb,
		[]string{rl.key(caller)},
		rl.now().UnixMicro(),
		window.Microseconds(),
		limit,
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return false, fmt.Errorf("redis: rate limit %s: %w", caller, err)
	}
	if len(result) < 2 {
		return false, fmt.Errorf("redis: rate limit %s: unexpected reply of %d values", caller, len(result))
	}
	return result[0] == 1, nil
}

var _ domain.RateLimiter = (*RateLimiter)(nil)
