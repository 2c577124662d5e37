package catalog_test

import (
	"context"
	"testing"

	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrichCart(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	a := seed(t, svc, "Mocha", "o@x.io", 3)
	b := seed(t, svc, "Latte", "o@x.io", 3)
	st.DeleteCoffee(b)

	items := []shop.CartItem{
		{ID: a, Name: "stale", Price: 1, CartQuantity: 2},
		{ID: b, Name: "Latte", Price: 2, CartQuantity: 1},
	}
	view, err := svc.EnrichCart(ctx, items)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)

	assert.Equal(t, a, view.Items[0].ID)
	assert.Equal(t, 2, view.Items[0].CartQuantity)
	require.NotNil(t, view.Items[0].Name)
	assert.Equal(t, "Mocha", *view.Items[0].Name)
	assert.Equal(t, 4.5, *view.Items[0].Price)

	assert.Equal(t, b, view.Items[1].ID)
	assert.Nil(t, view.Items[1].Name)
	assert.Nil(t, view.Items[1].Price)
	assert.Nil(t, view.Items[1].Photo)
}

func TestEnrichCartEmpty(t *testing.T) {
	svc, _, _ := newService(t)
	view, err := svc.EnrichCart(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, view.Items)
	assert.Empty(t, view.Items)
}

func TestEnrichOrdersKeepsOrder(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	var orders []shop.Order
	for i, name := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"} {
		id := seed(t, svc, name, "o@x.io", i)
		orders = append(orders, shop.Order{ID: name, CoffeeID: id})
	}
	orders = append(orders, shop.Order{ID: "gone", CoffeeID: "missing"})

	views, err := svc.EnrichOrders(ctx, orders)
	require.NoError(t, err)
	require.Len(t, views, len(orders))
	for i, v := range views[:10] {
		assert.Equal(t, orders[i].ID, v.ID)
		require.NotNil(t, v.Name)
		assert.Equal(t, orders[i].ID, *v.Name)
		assert.Equal(t, i, *v.Quantity)
	}
	assert.Nil(t, views[10].Name)
	assert.Nil(t, views[10].Quantity)
}
