package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Throttle allows one action per key per window.
type Throttle struct {
	client *redis.Client
	prefix string
}

func NewThrottle(c *Client, prefix string) *Throttle {
	return &Throttle{client: c.GetClient(), prefix: prefix}
}

// Allow claims the key for window. It returns false while an earlier claim
// is still live.
func (t *Throttle) Allow(ctx context.Context, key string, window time.Duration) (bool, error) {
	ok, err := t.client.SetNX(ctx, t.prefix+key, time.Now().Unix(), window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim throttle key %s: %w", key, err)
	}
	return ok, nil
}

// Release drops a claim so a failed action can be retried immediately.
func (t *Throttle) Release(ctx context.Context, key string) error {
	if err := t.client.Del(ctx, t.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release throttle key %s: %w", key, err)
	}
	return nil
}
