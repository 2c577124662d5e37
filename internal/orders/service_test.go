package orders_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ariefcatur/go-coffee-shop/internal/catalog"
	"github.com/ariefcatur/go-coffee-shop/internal/orders"
	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/ariefcatur/go-coffee-shop/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []shop.Envelope
}

func (r *recorder) Publish(_ context.Context, _ string, _ []byte, ev shop.Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.EventType == eventType {
			n++
		}
	}
	return n
}

type failingOrders struct{ shop.OrderStore }

func (failingOrders) Insert(context.Context, *shop.Order) (string, error) {
	return "", errors.New("disk full")
}

type fixture struct {
	svc     *orders.Service
	catalog *catalog.Service
	store   *memory.Store
	events  *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	rec := &recorder{}
	cat := &catalog.Service{Store: st.Coffees()}
	return &fixture{
		svc:     &orders.Service{Repo: st.Orders(), Inventory: cat, Events: rec, Producer: "test"},
		catalog: cat,
		store:   st,
		events:  rec,
	}
}

func (f *fixture) coffee(t *testing.T, qty int) string {
	t.Helper()
	id, err := f.catalog.Create(context.Background(), &shop.Coffee{Name: "Mocha", Quantity: qty, Photo: "m.png", Price: 3})
	require.NoError(t, err)
	return id
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	c, err := f.catalog.Get(context.Background(), id)
	require.NoError(t, err)
	return c.Quantity
}

func TestPlace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coffee := f.coffee(t, 2)

	id, err := f.svc.Place(ctx, coffee, shop.Order{CustomerEmail: "u@x.io", CustomerName: "U"})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, 1, f.stock(t, coffee))
	assert.Equal(t, 1, f.events.count(shop.EventOrderPlaced))

	got, err := f.store.Orders().Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, coffee, got.CoffeeID)
	assert.Equal(t, "u@x.io", got.CustomerEmail)
	assert.False(t, got.OrderedAt.IsZero())
}

func TestPlaceOutOfStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coffee := f.coffee(t, 0)

	_, err := f.svc.Place(ctx, coffee, shop.Order{CustomerEmail: "u@x.io"})
	assert.ErrorIs(t, err, shop.ErrOutOfStock)
	assert.Equal(t, 0, f.stock(t, coffee))

	_, err = f.svc.Place(ctx, "missing", shop.Order{CustomerEmail: "u@x.io"})
	assert.ErrorIs(t, err, shop.ErrOutOfStock)

	list, err := f.store.Orders().ListByCustomer(ctx, "u@x.io")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, f.events.count(shop.EventOrderPlaced))
}

func TestPlaceRestoresStockWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	f.svc.Repo = failingOrders{f.store.Orders()}
	coffee := f.coffee(t, 1)

	_, err := f.svc.Place(context.Background(), coffee, shop.Order{CustomerEmail: "u@x.io"})
	require.Error(t, err)
	assert.Equal(t, 1, f.stock(t, coffee))
}

func TestPlaceConcurrentNeverOversells(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coffee := f.coffee(t, 3)

	var ok, rejected atomic.Int32
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Place(ctx, coffee, shop.Order{CustomerEmail: "u@x.io"})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, shop.ErrOutOfStock):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), ok.Load())
	assert.Equal(t, int32(7), rejected.Load())
	assert.Equal(t, 0, f.stock(t, coffee))
}

func TestListByCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.coffee(t, 5)
	b := f.coffee(t, 5)

	first, err := f.svc.Place(ctx, a, shop.Order{CustomerEmail: "u@x.io"})
	require.NoError(t, err)
	second, err := f.svc.Place(ctx, b, shop.Order{CustomerEmail: "u@x.io"})
	require.NoError(t, err)
	_, err = f.svc.Place(ctx, a, shop.Order{CustomerEmail: "other@x.io"})
	require.NoError(t, err)
	f.store.DeleteCoffee(b)

	views, err := f.svc.ListByCustomer(ctx, "u@x.io", "u@x.io")
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, first, views[0].ID)
	require.NotNil(t, views[0].Name)
	assert.Equal(t, "Mocha", *views[0].Name)
	assert.Equal(t, 3, *views[0].Quantity)

	assert.Equal(t, second, views[1].ID)
	assert.Nil(t, views[1].Name)
	assert.Nil(t, views[1].Price)

	_, err = f.svc.ListByCustomer(ctx, "u@x.io", "other@x.io")
	assert.ErrorIs(t, err, shop.ErrForbidden)

	_, err = f.svc.ListByCustomer(ctx, "u@x.io", "")
	assert.ErrorIs(t, err, shop.ErrUnauthorized)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("restores stock once", func(t *testing.T) {
		f := newFixture(t)
		coffee := f.coffee(t, 1)
		id, err := f.svc.Place(ctx, coffee, shop.Order{CustomerEmail: "u@x.io"})
		require.NoError(t, err)
		require.Equal(t, 0, f.stock(t, coffee))

		require.NoError(t, f.svc.Cancel(ctx, id, ""))
		assert.Equal(t, 1, f.stock(t, coffee))
		assert.Equal(t, 1, f.events.count(shop.EventOrderCancelled))

		assert.ErrorIs(t, f.svc.Cancel(ctx, id, ""), shop.ErrOrderNotFound)
		assert.Equal(t, 1, f.stock(t, coffee))
	})

	t.Run("concurrent cancels restore once", func(t *testing.T) {
		f := newFixture(t)
		coffee := f.coffee(t, 1)
		id, err := f.svc.Place(ctx, coffee, shop.Order{CustomerEmail: "u@x.io"})
		require.NoError(t, err)

		var wg sync.WaitGroup
		var succeeded atomic.Int32
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if f.svc.Cancel(ctx, id, "") == nil {
					succeeded.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), succeeded.Load())
		assert.Equal(t, 1, f.stock(t, coffee))
	})

	t.Run("only the customer may cancel", func(t *testing.T) {
		f := newFixture(t)
		coffee := f.coffee(t, 1)
		id, err := f.svc.Place(ctx, coffee, shop.Order{CustomerEmail: "u@x.io"})
		require.NoError(t, err)

		assert.ErrorIs(t, f.svc.Cancel(ctx, id, "other@x.io"), shop.ErrForbidden)
		assert.Equal(t, 0, f.stock(t, coffee))

		require.NoError(t, f.svc.Cancel(ctx, id, "u@x.io"))
		assert.Equal(t, 1, f.stock(t, coffee))
	})

	t.Run("coffee deleted meanwhile", func(t *testing.T) {
		f := newFixture(t)
		coffee := f.coffee(t, 1)
		id, err := f.svc.Place(ctx, coffee, shop.Order{CustomerEmail: "u@x.io"})
		require.NoError(t, err)
		f.store.DeleteCoffee(coffee)

		require.NoError(t, f.svc.Cancel(ctx, id, ""))
		_, err = f.store.Orders().Get(ctx, id)
		assert.ErrorIs(t, err, shop.ErrOrderNotFound)
	})
}
