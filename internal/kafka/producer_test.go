package kafka

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWriter) written() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.msgs...)
}

func TestProducerFlushesOnClose(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 8, zap.NewNop())
	p.Start(context.Background())

	require.NoError(t, p.Publish("shop.orders", []byte("c1"), []byte("a")))
	require.NoError(t, p.Publish("shop.catalog", []byte("c2"), []byte("b")))
	p.Close()
	p.WaitClosed()

	msgs := w.written()
	require.Len(t, msgs, 2)
	assert.Equal(t, "shop.orders", msgs[0].Topic)
	assert.Equal(t, []byte("c1"), msgs[0].Key)
	assert.Equal(t, "shop.catalog", msgs[1].Topic)
	assert.True(t, w.closed)
}

func TestProducerPublishAfterClose(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 8, zap.NewNop())
	p.Start(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = p.Publish("shop.orders", nil, []byte("x"))
			}
		}()
	}
	p.Close()
	wg.Wait()
	p.Close()
	p.WaitClosed()

	assert.ErrorIs(t, p.Publish("shop.orders", nil, []byte("late")), ErrProducerClosed)
	assert.True(t, w.closed)
}

func TestProducerFlushesOnCancel(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 8, zap.NewNop())
	require.NoError(t, p.Publish("shop.orders", nil, []byte("queued")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Start(ctx)

	select {
	case <-p.closeCh:
	case <-time.After(2 * time.Second):
		t.Fatal("producer did not stop")
	}
	assert.Len(t, w.written(), 1)
	assert.True(t, w.closed)
}

func TestProducerDoesNotBlockWhenFull(t *testing.T) {
	p := newProducer(&fakeWriter{}, 1, zap.NewNop())

	require.NoError(t, p.Publish("t", nil, []byte("1")))
	assert.ErrorIs(t, p.Publish("t", nil, []byte("2")), ErrInboxFull)
}

func TestEventPublisherSetsHeaders(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 8, zap.NewNop())
	p.Start(context.Background())

	ev, err := shop.NewEnvelope(shop.EventOrderPlaced, "coffee-shop", "c1",
		shop.OrderPlacedPayload{OrderID: "o1", CoffeeID: "c1", CustomerEmail: "u@x.io"})
	require.NoError(t, err)
	require.NoError(t, EventPublisher{Producer: p}.Publish(context.Background(), shop.TopicOrders, shop.PartitionKey("c1"), ev))
	p.Close()
	p.WaitClosed()

	msgs := w.written()
	require.Len(t, msgs, 1)
	assert.Equal(t, shop.TopicOrders, msgs[0].Topic)
	assert.Equal(t, []kafka.Header{
		{Key: HeaderEventType, Value: []byte(shop.EventOrderPlaced)},
		{Key: HeaderEventVersion, Value: []byte("1")},
	}, msgs[0].Headers)

	got, err := DecodeEnvelope(msgs[0].Value)
	require.NoError(t, err)
	assert.Equal(t, ev.EventID, got.EventID)

	payload, err := UnwrapPayload[shop.OrderPlacedPayload](got.Payload)
	require.NoError(t, err)
	assert.Equal(t, "o1", payload.OrderID)
}
