package bridge

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/webNext25/zoom-smart-dialer/pkg/utils"
)

// SessionCap limits a user to one live session across all API nodes.
type SessionCap interface {
	Acquire(ctx context.Context, userID string) (bool, error)
	Release(ctx context.Context, userID string) error
}

// capTTL bounds how long a crashed node can hold a user's slot.
const capTTL = 2 * time.Hour

// RedisSessionCap backs SessionCap with the shared Redis concurrency
// counters, so two API nodes cannot dial for the same user at once.
type RedisSessionCap struct {
	rdb *redis.Client
}

func NewRedisSessionCap(rdb *redis.Client) *RedisSessionCap {
	return &RedisSessionCap{rdb: rdb}
}

func (c *RedisSessionCap) Acquire(ctx context.Context, userID string) (bool, error) {
	return utils.AcquireConcurrencyCap(ctx, c.rdb, "call_session:"+userID, 1, capTTL)
}

func (c *RedisSessionCap) Release(ctx context.Context, userID string) error {
	return utils.ReleaseConcurrencyCap(ctx, c.rdb, "call_session:"+userID)
}

// NoopSessionCap always admits; used when Redis is not configured.
type NoopSessionCap struct{}

func (NoopSessionCap) Acquire(ctx context.Context, userID string) (bool, error) { return true, nil }
func (NoopSessionCap) Release(ctx context.Context, userID string) error         { return nil }
