package memory

import (
	"context"

	"github.com/ariefcatur/go-coffee-shop/internal/shop"
)

type cartStore struct{ s *Store }

func (r cartStore) Get(ctx context.Context, email string) (*shop.Cart, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.carts[email]
	if !ok {
		return nil, shop.ErrCartNotFound
	}
	return cloneCart(c), nil
}

func (r cartStore) AddItem(ctx context.Context, email string, item shop.CartItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	c, ok := r.s.carts[email]
	if !ok {
		c = &shop.Cart{Email: email, Items: []shop.CartItem{}, CreatedAt: now}
		r.s.carts[email] = c
	}
	item.Extra = item.Extra.Clone()
	c.Add(item)
	c.UpdatedAt = now
	return nil
}

func (r cartStore) SetQuantity(ctx context.Context, email, coffeeID string, quantity int) error {
	return r.mutate(email, func(c *shop.Cart) { c.SetQuantity(coffeeID, quantity) })
}

func (r cartStore) RemoveItem(ctx context.Context, email, coffeeID string) error {
	return r.mutate(email, func(c *shop.Cart) { c.Remove(coffeeID) })
}

func (r cartStore) Clear(ctx context.Context, email string) error {
	return r.mutate(email, func(c *shop.Cart) { c.Clear() })
}

// mutate is a no-op for users without a cart document.
func (r cartStore) mutate(email string, fn func(*shop.Cart)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if c, ok := r.s.carts[email]; ok {
		fn(c)
		c.UpdatedAt = r.s.now()
	}
	return nil
}
