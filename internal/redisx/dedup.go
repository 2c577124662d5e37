package redisx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// MarkProcessed claims eventID for consumer. It returns false when the event
// was already claimed, so redelivered messages are applied once.
func MarkProcessed(ctx context.Context, rdb *redis.Client, consumer, eventID string) (bool, error) {
	key := fmt.Sprintf(KeyDedup, consumer, eventID)
	return rdb.SetNX(ctx, key, "1", TTLDedup).Result()
}

// ReleaseProcessed undoes MarkProcessed after a failed handler so the event
// can be retried.
func ReleaseProcessed(ctx context.Context, rdb *redis.Client, consumer, eventID string) error {
	return rdb.Del(ctx, fmt.Sprintf(KeyDedup, consumer, eventID)).Err()
}
