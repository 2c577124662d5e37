package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-coffee-shop/internal/logging"
	"github.com/ariefcatur/go-coffee-shop/internal/metrics"
	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CoffeeSource is the authoritative store behind the cache.
type CoffeeSource interface {
	Get(ctx context.Context, id string) (*shop.Coffee, error)
}

// CoffeeCache is a cache-aside view of single coffees. Concurrent misses for
// the same id share one store read. Redis failures degrade to store reads.
type CoffeeCache struct {
	RDB     *redis.Client
	Source  CoffeeSource
	TTL     time.Duration
	Metrics *metrics.Metrics

	group singleflight.Group
}

func (c *CoffeeCache) Get(ctx context.Context, id string) (*shop.Coffee, error) {
	key := fmt.Sprintf(KeyCoffee, id)

	b, err := c.RDB.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var coffee shop.Coffee
		if jerr := json.Unmarshal(b, &coffee); jerr == nil {
			c.count("hit")
			return &coffee, nil
		}
		c.count("corrupt")
	case errors.Is(err, redis.Nil):
		c.count("miss")
	default:
		c.count("error")
		logging.FromContext(ctx).Warn("coffee_cache_get_failed", zap.String("coffee_id", id), zap.Error(err))
	}

	// The shared load outlives any single caller; each caller stops
	// waiting when its own ctx ends.
	lctx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(id, func() (any, error) {
		coffee, err := c.Source.Get(lctx, id)
		if err != nil {
			return nil, err
		}
		if b, err := json.Marshal(coffee); err == nil {
			if err := c.RDB.Set(lctx, key, b, c.ttl()).Err(); err != nil {
				logging.FromContext(lctx).Warn("coffee_cache_set_failed", zap.String("coffee_id", id), zap.Error(err))
			}
		}
		return coffee, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*shop.Coffee), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate drops the cached copy of id.
func (c *CoffeeCache) Invalidate(ctx context.Context, id string) error {
	return c.RDB.Del(ctx, fmt.Sprintf(KeyCoffee, id)).Err()
}

func (c *CoffeeCache) ttl() time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return TTLCoffee
}

func (c *CoffeeCache) count(result string) {
	if c.Metrics != nil {
		c.Metrics.CacheRequests.WithLabelValues(result).Inc()
	}
}
