package shop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_AddMergesSameCoffee(t *testing.T) {
	c := &Cart{Email: "a@example.com"}
	c.Add(CartItem{ID: "c1", Name: "Espresso"})
	c.Add(CartItem{ID: "c1", Name: "Espresso"})

	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].CartQuantity)
}

func TestCart_AddAppendsInOrder(t *testing.T) {
	c := &Cart{}
	c.Add(CartItem{ID: "c1", CartQuantity: 9})
	c.Add(CartItem{ID: "c2"})
	c.Add(CartItem{ID: "c3"})

	require.Len(t, c.Items, 3)
	assert.Equal(t, []string{"c1", "c2", "c3"}, []string{c.Items[0].ID, c.Items[1].ID, c.Items[2].ID})
	assert.Equal(t, 1, c.Items[0].CartQuantity, "new lines always start at one")
}

func TestCart_SetQuantityRemoveClear(t *testing.T) {
	c := &Cart{}
	c.Add(CartItem{ID: "c1"})
	c.Add(CartItem{ID: "c2"})

	assert.True(t, c.SetQuantity("c2", 5))
	assert.False(t, c.SetQuantity("missing", 5))
	assert.Equal(t, 5, c.Items[1].CartQuantity)

	assert.True(t, c.Remove("c1"))
	assert.False(t, c.Remove("c1"))
	require.Len(t, c.Items, 1)
	assert.Equal(t, "c2", c.Items[0].ID)

	c.Clear()
	assert.NotNil(t, c.Items)
	assert.Empty(t, c.Items)
}
