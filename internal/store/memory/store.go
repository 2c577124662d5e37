// Package memory is an in-process implementation of the shop store ports.
// One mutex guards all three collections so every operation is atomic.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ariefcatur/go-coffee-shop/internal/shop"
)

type Store struct {
	mu      sync.RWMutex
	coffees map[string]*shop.Coffee
	orders  map[string]*shop.Order
	carts   map[string]*shop.Cart
	seq     map[string]int64 // insertion order, used as natural order
	next    int64
	now     func() time.Time
}

func New() *Store {
	return &Store{
		coffees: make(map[string]*shop.Coffee),
		orders:  make(map[string]*shop.Order),
		carts:   make(map[string]*shop.Cart),
		seq:     make(map[string]int64),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Coffees() shop.CoffeeStore { return coffeeStore{s} }
func (s *Store) Orders() shop.OrderStore   { return orderStore{s} }
func (s *Store) Carts() shop.CartStore     { return cartStore{s} }
func (s *Store) Close(context.Context) error {
	return nil
}

// caller holds s.mu for writing.
func (s *Store) track(id string) {
	s.next++
	s.seq[id] = s.next
}

func (s *Store) sortNatural(ids []string) {
	sort.Slice(ids, func(i, j int) bool { return s.seq[ids[i]] < s.seq[ids[j]] })
}

func cloneCoffee(c *shop.Coffee) *shop.Coffee {
	out := *c
	out.LikedBy = append([]string{}, c.LikedBy...)
	return &out
}

func cloneOrder(o *shop.Order) *shop.Order {
	out := *o
	out.Extra = o.Extra.Clone()
	return &out
}

func cloneCart(c *shop.Cart) *shop.Cart {
	out := *c
	out.Items = append([]shop.CartItem{}, c.Items...)
	for i := range out.Items {
		out.Items[i].Extra = out.Items[i].Extra.Clone()
	}
	return &out
}
