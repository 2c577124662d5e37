package memory

import (
	"context"

	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/google/uuid"
)

type orderStore struct{ s *Store }

func (r orderStore) Insert(ctx context.Context, o *shop.Order) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := cloneOrder(o)
	stored.ID = uuid.NewString()
	if stored.OrderedAt.IsZero() {
		stored.OrderedAt = r.s.now()
	}
	r.s.orders[stored.ID] = stored
	r.s.track(stored.ID)
	o.ID = stored.ID
	return stored.ID, nil
}

func (r orderStore) Get(ctx context.Context, id string) (*shop.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, shop.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r orderStore) ListByCustomer(ctx context.Context, email string) ([]shop.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var ids []string
	for id, o := range r.s.orders {
		if o.CustomerEmail == email {
			ids = append(ids, id)
		}
	}
	r.s.sortNatural(ids)
	out := make([]shop.Order, 0, len(ids))
	for _, id := range ids {
		out = append(out, *cloneOrder(r.s.orders[id]))
	}
	return out, nil
}

func (r orderStore) Delete(ctx context.Context, id string) (*shop.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, shop.ErrOrderNotFound
	}
	delete(r.s.orders, id)
	delete(r.s.seq, id)
	return o, nil
}
