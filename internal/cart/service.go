// Package cart keeps one server-side cart per user. Stored lines reference a
// coffee by id; every read replaces their cached fields with live values.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-coffee-shop/internal/catalog"
	"github.com/ariefcatur/go-coffee-shop/internal/metrics"
	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/ariefcatur/go-coffee-shop/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type Enricher interface {
	EnrichCart(ctx context.Context, items []shop.CartItem) (shop.CartView, error)
}

var _ Enricher = (*catalog.Service)(nil)

type Service struct {
	Repo     shop.CartStore
	Enricher Enricher
	Metrics  *metrics.Metrics
}

// Get returns the enriched cart, or an empty one when the user has none.
func (s *Service) Get(ctx context.Context, email string) (_ shop.CartView, err error) {
	ctx, done := telemetry.Start(ctx, s.Metrics, "cart.get")
	defer func() { done(err) }()

	return s.view(ctx, email)
}

// Add puts one unit of item's coffee in the cart, creating the cart if needed.
func (s *Service) Add(ctx context.Context, email string, item shop.CartItem) (_ shop.CartView, err error) {
	ctx, done := telemetry.Start(ctx, s.Metrics, "cart.add", attribute.String("coffee.id", item.ID))
	defer func() { done(err) }()

	if item.ID == "" {
		return shop.CartView{}, fmt.Errorf("%w: coffee id is required", shop.ErrInvalidInput)
	}
	if err := s.Repo.AddItem(ctx, email, item); err != nil {
		return shop.CartView{}, fmt.Errorf("add cart item: %w", err)
	}
	return s.view(ctx, email)
}

func (s *Service) SetQuantity(ctx context.Context, email, coffeeID string, quantity int) (_ shop.CartView, err error) {
	ctx, done := telemetry.Start(ctx, s.Metrics, "cart.set_quantity", attribute.String("coffee.id", coffeeID))
	defer func() { done(err) }()

	if quantity < 1 {
		return shop.CartView{}, fmt.Errorf("%w: quantity must be at least 1", shop.ErrInvalidInput)
	}
	if err := s.Repo.SetQuantity(ctx, email, coffeeID, quantity); err != nil {
		return shop.CartView{}, fmt.Errorf("set cart quantity: %w", err)
	}
	return s.view(ctx, email)
}

func (s *Service) Remove(ctx context.Context, email, coffeeID string) (_ shop.CartView, err error) {
	ctx, done := telemetry.Start(ctx, s.Metrics, "cart.remove", attribute.String("coffee.id", coffeeID))
	defer func() { done(err) }()

	if err := s.Repo.RemoveItem(ctx, email, coffeeID); err != nil {
		return shop.CartView{}, fmt.Errorf("remove cart item: %w", err)
	}
	return s.view(ctx, email)
}

// Clear empties the item list. The cart itself is kept.
func (s *Service) Clear(ctx context.Context, email string) (_ shop.CartView, err error) {
	ctx, done := telemetry.Start(ctx, s.Metrics, "cart.clear")
	defer func() { done(err) }()

	if err := s.Repo.Clear(ctx, email); err != nil {
		return shop.CartView{}, fmt.Errorf("clear cart: %w", err)
	}
	return shop.EmptyCart(), nil
}

func (s *Service) view(ctx context.Context, email string) (shop.CartView, error) {
	c, err := s.Repo.Get(ctx, email)
	if errors.Is(err, shop.ErrCartNotFound) {
		return shop.EmptyCart(), nil
	}
	if err != nil {
		return shop.CartView{}, fmt.Errorf("get cart: %w", err)
	}
	return s.Enricher.EnrichCart(ctx, c.Items)
}
