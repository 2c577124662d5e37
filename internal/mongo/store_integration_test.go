//go:build integration

package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Run with a live server:
//
//	MONGO_TEST_URI=mongodb://localhost:27017 go test -tags integration ./internal/mongo/
func openTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	name := fmt.Sprintf("coffee_it_%d", time.Now().UnixNano())
	s, err := Connect(ctx, uri, name)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = s.client.Database(name).Drop(ctx)
		_ = s.Close(ctx)
	})
	return s
}

func parallel(n int, f func(i int)) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f(i)
		}(i)
	}
	wg.Wait()
}

func TestIntegrationReserveNeverOversells(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Coffees().Insert(ctx, &shop.Coffee{Name: "Mocha", Quantity: 5, LikedBy: []string{}})
	require.NoError(t, err)

	var ok, out atomic.Int32
	parallel(20, func(int) {
		switch err := s.Coffees().Reserve(ctx, id); {
		case err == nil:
			ok.Add(1)
		case errors.Is(err, shop.ErrOutOfStock):
			out.Add(1)
		default:
			t.Error(err)
		}
	})
	assert.Equal(t, int32(5), ok.Load())
	assert.Equal(t, int32(15), out.Load())

	c, err := s.Coffees().Get(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, c.Quantity)

	require.NoError(t, s.Coffees().Restore(ctx, id))
	require.NoError(t, s.Coffees().Reserve(ctx, id))
	assert.ErrorIs(t, s.Coffees().Reserve(ctx, id), shop.ErrOutOfStock)
}

func TestIntegrationToggleLikeConcurrent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Coffees().Insert(ctx, &shop.Coffee{Name: "Latte", LikedBy: []string{}})
	require.NoError(t, err)

	parallel(10, func(i int) {
		liked, err := s.Coffees().ToggleLike(ctx, id, fmt.Sprintf("u%d@x.io", i))
		assert.NoError(t, err)
		assert.True(t, liked)
	})
	c, err := s.Coffees().Get(ctx, id)
	require.NoError(t, err)
	assert.Len(t, c.LikedBy, 10)

	liked, err := s.Coffees().ToggleLike(ctx, id, "u3@x.io")
	require.NoError(t, err)
	assert.False(t, liked)

	_, err = s.Coffees().ToggleLike(ctx, primitive.NewObjectID().Hex(), "u@x.io")
	assert.ErrorIs(t, err, shop.ErrCoffeeNotFound)
}

func TestIntegrationAddItemMergesConcurrentAdds(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	const email = "u@x.io"

	parallel(10, func(int) {
		assert.NoError(t, s.Carts().AddItem(ctx, email, shop.CartItem{
			ID:    "c1",
			Name:  "Mocha",
			Extra: shop.Extra{"supplier": "Kopi Co"},
		}))
	})
	require.NoError(t, s.Carts().AddItem(ctx, email, shop.CartItem{ID: "c2"}))

	c, err := s.Carts().Get(ctx, email)
	require.NoError(t, err)
	require.Len(t, c.Items, 2)
	assert.Equal(t, "c1", c.Items[0].ID)
	assert.Equal(t, 10, c.Items[0].CartQuantity)
	assert.Equal(t, shop.Extra{"supplier": "Kopi Co"}, c.Items[0].Extra)
	assert.Equal(t, 1, c.Items[1].CartQuantity)

	n, err := s.cart.CountDocuments(ctx, bson.D{{Key: "email", Value: email}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestIntegrationOrderDeleteReturnsOnce(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Orders().Insert(ctx, &shop.Order{
		CoffeeID:      "c1",
		CustomerEmail: "u@x.io",
		Extra:         shop.Extra{"size": "large", "delivery": map[string]any{"slot": "am"}},
	})
	require.NoError(t, err)

	list, err := s.Orders().ListByCustomer(ctx, "u@x.io")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, shop.Extra{"size": "large", "delivery": map[string]any{"slot": "am"}}, list[0].Extra)
	assert.False(t, list[0].OrderedAt.IsZero())

	var deleted, missing atomic.Int32
	parallel(5, func(int) {
		o, err := s.Orders().Delete(ctx, id)
		switch {
		case err == nil:
			deleted.Add(1)
			assert.Equal(t, "c1", o.CoffeeID)
		case errors.Is(err, shop.ErrOrderNotFound):
			missing.Add(1)
		default:
			t.Error(err)
		}
	})
	assert.Equal(t, int32(1), deleted.Load())
	assert.Equal(t, int32(4), missing.Load())
}
