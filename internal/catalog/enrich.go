package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"golang.org/x/sync/errgroup"
)

// maxLookups bounds the per-request fan-out of coffee lookups.
const maxLookups = 8

// LookupAll fetches the coffees for ids concurrently. The result is index
// aligned with ids; a nil entry means the coffee does not exist.
func (s *Service) LookupAll(ctx context.Context, ids []string) ([]*shop.Coffee, error) {
	out := make([]*shop.Coffee, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxLookups)
	for i, id := range ids {
		g.Go(func() error {
			c, err := s.Lookup(ctx, id)
			switch {
			case errors.Is(err, shop.ErrCoffeeNotFound):
				return nil
			case err != nil:
				return fmt.Errorf("lookup coffee %s: %w", id, err)
			}
			out[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// EnrichCart overlays live name, photo and price onto stored cart lines.
// Values cached in the line are discarded even when the coffee is gone.
func (s *Service) EnrichCart(ctx context.Context, items []shop.CartItem) (shop.CartView, error) {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	coffees, err := s.LookupAll(ctx, ids)
	if err != nil {
		return shop.CartView{}, err
	}

	view := shop.CartView{Items: make([]shop.CartLine, len(items))}
	for i, it := range items {
		line := shop.CartLine{ID: it.ID, CartQuantity: it.CartQuantity, Extra: it.Extra.Clone()}
		if c := coffees[i]; c != nil {
			line.Name, line.Photo, line.Price = &c.Name, &c.Photo, &c.Price
		}
		view.Items[i] = line
	}
	return view, nil
}

// EnrichOrders overlays live name, photo, price and stock onto orders.
func (s *Service) EnrichOrders(ctx context.Context, orders []shop.Order) ([]shop.OrderView, error) {
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.CoffeeID
	}
	coffees, err := s.LookupAll(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]shop.OrderView, len(orders))
	for i, o := range orders {
		v := shop.OrderView{Order: o}
		if c := coffees[i]; c != nil {
			v.Name, v.Photo, v.Price, v.Quantity = &c.Name, &c.Photo, &c.Price, &c.Quantity
		}
		out[i] = v
	}
	return out, nil
}
