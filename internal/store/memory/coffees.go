package memory

import (
	"context"

	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/google/uuid"
)

type coffeeStore struct{ s *Store }

func (r coffeeStore) List(ctx context.Context) ([]shop.Coffee, error) {
	return r.filter(func(*shop.Coffee) bool { return true }), nil
}

func (r coffeeStore) ListByOwner(ctx context.Context, email string) ([]shop.Coffee, error) {
	return r.filter(func(c *shop.Coffee) bool { return c.Email == email }), nil
}

func (r coffeeStore) filter(keep func(*shop.Coffee) bool) []shop.Coffee {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]string, 0, len(r.s.coffees))
	for id, c := range r.s.coffees {
		if keep(c) {
			ids = append(ids, id)
		}
	}
	r.s.sortNatural(ids)
	out := make([]shop.Coffee, 0, len(ids))
	for _, id := range ids {
		out = append(out, *cloneCoffee(r.s.coffees[id]))
	}
	return out
}

func (r coffeeStore) Get(ctx context.Context, id string) (*shop.Coffee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.coffees[id]
	if !ok {
		return nil, shop.ErrCoffeeNotFound
	}
	return cloneCoffee(c), nil
}

func (r coffeeStore) Insert(ctx context.Context, c *shop.Coffee) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := cloneCoffee(c)
	stored.ID = uuid.NewString()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.s.now()
	}
	r.s.coffees[stored.ID] = stored
	r.s.track(stored.ID)
	c.ID = stored.ID
	return stored.ID, nil
}

func (r coffeeStore) Update(ctx context.Context, id string, patch shop.CoffeePatch) (shop.UpdateResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res := shop.UpdateResult{Acknowledged: true}
	c, ok := r.s.coffees[id]
	if !ok {
		return res, nil
	}
	res.MatchedCount = 1
	if patch.Apply(c) {
		res.ModifiedCount = 1
	}
	return res, nil
}

func (r coffeeStore) ToggleLike(ctx context.Context, id, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.coffees[id]
	if !ok {
		return false, shop.ErrCoffeeNotFound
	}
	for i, e := range c.LikedBy {
		if e == email {
			c.LikedBy = append(c.LikedBy[:i], c.LikedBy[i+1:]...)
			return false, nil
		}
	}
	c.LikedBy = append(c.LikedBy, email)
	return true, nil
}

func (r coffeeStore) Reserve(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.coffees[id]
	if !ok || c.Quantity <= 0 {
		return shop.ErrOutOfStock
	}
	c.Quantity--
	return nil
}

func (r coffeeStore) Restore(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if c, ok := r.s.coffees[id]; ok {
		c.Quantity++
	}
	return nil
}

// Delete is not part of the catalog port; tests use it to simulate a coffee
// removed out of band.
func (s *Store) DeleteCoffee(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.coffees, id)
}
