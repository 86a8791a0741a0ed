package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-flower-shop/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// RedisCache keeps rendered reports under a version prefix. Bumping the version
// (see Invalidator) makes every older entry unreachable; TTL reclaims them. A report
// loaded while the version moves is stored under the old version and never served.
type RedisCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func (c *RedisCache) Get(ctx context.Context, kind, date, flower string, dst any) (string, bool, error) {
	if c.TTL <= 0 {
		return "", false, nil
	}
	key, err := c.key(ctx, kind, date, flower)
	if err != nil {
		return "", false, err
	}
	b, err := c.Redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return key, false, nil
	}
	if err != nil {
		return key, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return key, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return key, true, nil
}

// Set stores v under a key returned by Get.
func (c *RedisCache) Set(ctx context.Context, key string, v any) error {
	if c.TTL <= 0 || key == "" {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.Redis.Set(ctx, key, b, c.TTL).Err()
}

func (c *RedisCache) key(ctx context.Context, kind, date, flower string) (string, error) {
	version, err := c.Redis.Get(ctx, redisx.KeyStatsVersion).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("redis get %s: %w", redisx.KeyStatsVersion, err)
	}
	return fmt.Sprintf(redisx.KeyStats, version, kind, date, flower), nil
}
