package popularity

import (
	"context"
	"errors"
	"testing"

	kafkax "github.com/ariefcatur/go-coffee-shop/internal/kafka"
	"github.com/ariefcatur/go-coffee-shop/internal/metrics"
	"github.com/ariefcatur/go-coffee-shop/internal/redisx"
	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/go-redis/redismock/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBoard struct {
	scores map[string]float64
	err    error
}

func (b *fakeBoard) Add(_ context.Context, id string, d float64) error {
	if b.err != nil {
		return b.err
	}
	b.scores[id] += d
	return nil
}

func message(t *testing.T, eventType string, payload any) (kafkago.Message, shop.Envelope) {
	t.Helper()
	env, err := shop.NewEnvelope(eventType, "test", "c1", payload)
	require.NoError(t, err)
	b, err := kafkax.Marshal(env)
	require.NoError(t, err)
	return kafkago.Message{Value: b}, env
}

func TestHandleOrderEvent_PlacedThenCancelled(t *testing.T) {
	db, mock := redismock.NewClientMock()
	board := &fakeBoard{scores: map[string]float64{}}
	m := metrics.Noop()
	p := &Projector{Board: board, Redis: db, Consumer: "popularity", Metrics: m}
	ctx := context.Background()

	placed, penv := message(t, shop.EventOrderPlaced, shop.OrderPlacedPayload{OrderID: "o1", CoffeeID: "c1"})
	mock.ExpectSetNX("dedup:popularity:"+penv.EventID, "1", redisx.TTLDedup).SetVal(true)
	require.NoError(t, p.HandleOrderEvent(ctx, placed))
	assert.Equal(t, 1.0, board.scores["c1"])

	cancelled, cenv := message(t, shop.EventOrderCancelled, shop.OrderCancelledPayload{OrderID: "o1", CoffeeID: "c1"})
	mock.ExpectSetNX("dedup:popularity:"+cenv.EventID, "1", redisx.TTLDedup).SetVal(true)
	require.NoError(t, p.HandleOrderEvent(ctx, cancelled))
	assert.Equal(t, 0.0, board.scores["c1"])

	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsConsumed.WithLabelValues(shop.EventOrderPlaced, "success")))
}

func TestHandleOrderEvent_RedeliveryAppliedOnce(t *testing.T) {
	db, mock := redismock.NewClientMock()
	board := &fakeBoard{scores: map[string]float64{}}
	p := &Projector{Board: board, Redis: db, Consumer: "popularity"}

	msg, env := message(t, shop.EventOrderPlaced, shop.OrderPlacedPayload{OrderID: "o1", CoffeeID: "c1"})
	mock.ExpectSetNX("dedup:popularity:"+env.EventID, "1", redisx.TTLDedup).SetVal(true)
	mock.ExpectSetNX("dedup:popularity:"+env.EventID, "1", redisx.TTLDedup).SetVal(false)

	require.NoError(t, p.HandleOrderEvent(context.Background(), msg))
	require.NoError(t, p.HandleOrderEvent(context.Background(), msg))
	assert.Equal(t, 1.0, board.scores["c1"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleOrderEvent_BoardFailureReleasesClaim(t *testing.T) {
	db, mock := redismock.NewClientMock()
	p := &Projector{Board: &fakeBoard{err: errors.New("boom")}, Redis: db, Consumer: "popularity"}

	msg, env := message(t, shop.EventOrderPlaced, shop.OrderPlacedPayload{OrderID: "o1", CoffeeID: "c1"})
	mock.ExpectSetNX("dedup:popularity:"+env.EventID, "1", redisx.TTLDedup).SetVal(true)
	mock.ExpectDel("dedup:popularity:" + env.EventID).SetVal(1)

	assert.Error(t, p.HandleOrderEvent(context.Background(), msg))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleOrderEvent_SkipsOtherAndMalformed(t *testing.T) {
	db, mock := redismock.NewClientMock()
	board := &fakeBoard{scores: map[string]float64{}}
	p := &Projector{Board: board, Redis: db, Consumer: "popularity"}
	ctx := context.Background()

	liked, _ := message(t, shop.EventCoffeeLiked, shop.CoffeeLikedPayload{CoffeeID: "c1"})
	require.NoError(t, p.HandleOrderEvent(ctx, liked))
	require.NoError(t, p.HandleOrderEvent(ctx, kafkago.Message{Value: []byte("not json")}))

	noCoffee, _ := message(t, shop.EventOrderPlaced, shop.OrderPlacedPayload{OrderID: "o1"})
	require.NoError(t, p.HandleOrderEvent(ctx, noCoffee))

	assert.Empty(t, board.scores)
	require.NoError(t, mock.ExpectationsWereMet())
}
