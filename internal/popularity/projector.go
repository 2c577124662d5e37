// Package popularity projects order events into the Redis popularity board.
package popularity

import (
	"context"
	"fmt"

	kafkax "github.com/ariefcatur/go-coffee-shop/internal/kafka"
	"github.com/ariefcatur/go-coffee-shop/internal/logging"
	"github.com/ariefcatur/go-coffee-shop/internal/metrics"
	"github.com/ariefcatur/go-coffee-shop/internal/redisx"
	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Board is the ranking the projector writes to.
type Board interface {
	Add(ctx context.Context, coffeeID string, delta float64) error
}

var _ Board = (*redisx.PopularityBoard)(nil)

type Projector struct {
	Board    Board
	Redis    *redis.Client // dedup keys
	Consumer string        // dedup namespace
	Metrics  *metrics.Metrics
}

// delta returns the score change for an order event type, 0 for anything else.
func delta(eventType string) float64 {
	switch eventType {
	case shop.EventOrderPlaced:
		return 1
	case shop.EventOrderCancelled:
		return -1
	}
	return 0
}

// HandleOrderEvent is installed as the consumer handler for shop.orders.
// Events are applied at most once per event id.
func (p *Projector) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	env, err := kafkax.DecodeEnvelope(m.Value)
	if err != nil {
		p.count("unknown", "malformed")
		logging.FromContext(ctx).Warn("event_dropped", zap.Error(err), zap.Int64("offset", m.Offset))
		return nil
	}
	d := delta(env.EventType)
	if d == 0 {
		p.count(env.EventType, "ignored")
		return nil
	}

	coffeeID, err := coffeeOf(env)
	if err != nil {
		p.count(env.EventType, "malformed")
		logging.FromContext(ctx).Warn("event_dropped", zap.Error(err), zap.String("event_id", env.EventID))
		return nil
	}

	fresh, err := redisx.MarkProcessed(ctx, p.Redis, p.Consumer, env.EventID)
	if err != nil {
		p.count(env.EventType, "error")
		return fmt.Errorf("dedup %s: %w", env.EventID, err)
	}
	if !fresh {
		p.count(env.EventType, "duplicate")
		return nil
	}

	if err := p.Board.Add(ctx, coffeeID, d); err != nil {
		if rerr := redisx.ReleaseProcessed(ctx, p.Redis, p.Consumer, env.EventID); rerr != nil {
			logging.FromContext(ctx).Warn("dedup_release_failed", zap.Error(rerr), zap.String("event_id", env.EventID))
		}
		p.count(env.EventType, "error")
		return err
	}
	p.count(env.EventType, "success")
	return nil
}

func coffeeOf(env shop.Envelope) (string, error) {
	var id string
	switch env.EventType {
	case shop.EventOrderPlaced:
		pl, err := kafkax.UnwrapPayload[shop.OrderPlacedPayload](env.Payload)
		if err != nil {
			return "", err
		}
		id = pl.CoffeeID
	case shop.EventOrderCancelled:
		pl, err := kafkax.UnwrapPayload[shop.OrderCancelledPayload](env.Payload)
		if err != nil {
			return "", err
		}
		id = pl.CoffeeID
	}
	if id == "" {
		return "", fmt.Errorf("%s %s: empty coffee_id", env.EventType, env.EventID)
	}
	return id, nil
}

func (p *Projector) count(eventType, outcome string) {
	if p.Metrics != nil {
		p.Metrics.EventsConsumed.WithLabelValues(eventType, outcome).Inc()
	}
}
