package catalog

import (
	"context"

	"github.com/ariefcatur/go-coffee-shop/internal/logging"
	"github.com/ariefcatur/go-coffee-shop/internal/metrics"
	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Publish emits a domain event. Failures are logged and counted, never returned.
func Publish(ctx context.Context, p shop.Publisher, m *metrics.Metrics, producer, topic, eventType, coffeeID string, payload any) {
	publish(ctx, p, m, producer, topic, eventType, coffeeID, payload)
}

func publish(ctx context.Context, p shop.Publisher, m *metrics.Metrics, producer, topic, eventType, coffeeID string, payload any) {
	if p == nil {
		return
	}
	ev, err := shop.NewEnvelope(eventType, producer, coffeeID, payload)
	if err == nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			ev.TraceID = sc.TraceID().String()
		}
		err = p.Publish(ctx, topic, shop.PartitionKey(coffeeID), ev)
	}
	if m != nil {
		m.EventsPublished.WithLabelValues(topic, metrics.Outcome(err)).Inc()
	}
	if err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed",
			zap.String("event_type", eventType),
			zap.String("topic", topic),
			zap.Error(err),
		)
	}
}
