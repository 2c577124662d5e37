package kafka

import (
	"context"
	"strconv"

	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/segmentio/kafka-go"
)

const (
	HeaderEventType    = "x-event-type"
	HeaderEventVersion = "x-event-version"
)

// EventPublisher puts shop envelopes on the producer's inbox.
type EventPublisher struct {
	Producer *Producer
}

var _ shop.Publisher = EventPublisher{}

func (p EventPublisher) Publish(_ context.Context, topic string, key []byte, ev shop.Envelope) error {
	b, err := Marshal(ev)
	if err != nil {
		return err
	}
	return p.Producer.Publish(topic, key, b,
		kafka.Header{Key: HeaderEventType, Value: []byte(ev.EventType)},
		kafka.Header{Key: HeaderEventVersion, Value: []byte(strconv.Itoa(ev.EventVersion))},
	)
}
