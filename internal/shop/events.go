package shop

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderPlaced    = "OrderPlaced"
	EventOrderCancelled = "OrderCancelled"
	EventCoffeeCreated  = "CoffeeCreated"
	EventCoffeeUpdated  = "CoffeeUpdated"
	EventCoffeeLiked    = "CoffeeLiked"
)

// Envelope is the v1 wrapper for every published event.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // coffee id
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps payload in a fresh v1 envelope.
func NewEnvelope(eventType, producer, correlationID string, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       b,
	}, nil
}

type OrderPlacedPayload struct {
	OrderID       string `json:"order_id"`
	CoffeeID      string `json:"coffee_id"`
	CustomerEmail string `json:"customer_email"`
}

type OrderCancelledPayload struct {
	OrderID       string `json:"order_id"`
	CoffeeID      string `json:"coffee_id"`
	CustomerEmail string `json:"customer_email"`
}

type CoffeeChangedPayload struct {
	CoffeeID string   `json:"coffee_id"`
	Owner    string   `json:"owner,omitempty"`
	Fields   []string `json:"fields,omitempty"`
}

type CoffeeLikedPayload struct {
	CoffeeID string `json:"coffee_id"`
	Email    string `json:"email"`
	Liked    bool   `json:"liked"`
}

// Publisher hands events to the message bus. Implementations must not block
// the caller on broker availability.
type Publisher interface {
	Publish(ctx context.Context, topic string, key []byte, ev Envelope) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, []byte, Envelope) error { return nil }
