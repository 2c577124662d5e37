package redisx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Ranked is one entry of the popularity board.
type Ranked struct {
	CoffeeID string
	Score    float64
}

// PopularityBoard ranks coffees by open orders in a sorted set.
type PopularityBoard struct {
	RDB *redis.Client
	Key string
}

func NewPopularityBoard(rdb *redis.Client) *PopularityBoard {
	return &PopularityBoard{RDB: rdb, Key: KeyPopularity}
}

// Add moves coffeeID's score by delta. Members that drop to zero or below
// are removed.
func (b *PopularityBoard) Add(ctx context.Context, coffeeID string, delta float64) error {
	score, err := b.RDB.ZIncrBy(ctx, b.Key, delta, coffeeID).Result()
	if err != nil {
		return fmt.Errorf("zincrby %s: %w", coffeeID, err)
	}
	if score <= 0 {
		return b.RDB.ZRem(ctx, b.Key, coffeeID).Err()
	}
	return nil
}

// Top returns up to n coffees, highest score first.
func (b *PopularityBoard) Top(ctx context.Context, n int64) ([]Ranked, error) {
	if n <= 0 {
		return []Ranked{}, nil
	}
	zs, err := b.RDB.ZRevRangeWithScores(ctx, b.Key, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Ranked, 0, len(zs))
	for _, z := range zs {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		out = append(out, Ranked{CoffeeID: id, Score: z.Score})
	}
	return out, nil
}
