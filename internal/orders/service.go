package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-coffee-shop/internal/catalog"
	"github.com/ariefcatur/go-coffee-shop/internal/logging"
	"github.com/ariefcatur/go-coffee-shop/internal/metrics"
	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/ariefcatur/go-coffee-shop/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Inventory is the part of the catalog an order touches.
type Inventory interface {
	Reserve(ctx context.Context, coffeeID string) error
	Restore(ctx context.Context, coffeeID string) error
	EnrichOrders(ctx context.Context, orders []shop.Order) ([]shop.OrderView, error)
}

var _ Inventory = (*catalog.Service)(nil)

type Service struct {
	Repo      shop.OrderStore
	Inventory Inventory
	Events    shop.Publisher
	Metrics   *metrics.Metrics
	Producer  string
}

// Place reserves one unit of the coffee and records the order with every
// field the client sent. Id, coffee id and order time are always assigned by
// the server. When the insert fails the reserved unit is given back.
func (s *Service) Place(ctx context.Context, coffeeID string, o shop.Order) (_ string, err error) {
	ctx, done := telemetry.Start(ctx, s.Metrics, "orders.place", attribute.String("coffee.id", coffeeID))
	defer func() { done(err) }()

	if err := s.Inventory.Reserve(ctx, coffeeID); err != nil {
		return "", err
	}

	o.ID = ""
	o.CoffeeID = coffeeID
	o.OrderedAt = time.Time{}
	id, err := s.Repo.Insert(ctx, &o)
	if err != nil {
		if rerr := s.Inventory.Restore(context.WithoutCancel(ctx), coffeeID); rerr != nil {
			logging.FromContext(ctx).Error("order_compensation_failed",
				zap.String("coffee_id", coffeeID), zap.Error(rerr))
		}
		return "", fmt.Errorf("insert order: %w", err)
	}

	catalog.Publish(ctx, s.Events, s.Metrics, s.Producer, shop.TopicOrders, shop.EventOrderPlaced, coffeeID,
		shop.OrderPlacedPayload{OrderID: id, CoffeeID: coffeeID, CustomerEmail: o.CustomerEmail})
	return id, nil
}

// ListByCustomer returns email's orders enriched with live coffee data.
// caller is the authenticated email and must match.
func (s *Service) ListByCustomer(ctx context.Context, email, caller string) (_ []shop.OrderView, err error) {
	ctx, done := telemetry.Start(ctx, s.Metrics, "orders.list_by_customer")
	defer func() { done(err) }()

	if caller == "" {
		return nil, shop.ErrUnauthorized
	}
	if email != caller {
		return nil, fmt.Errorf("%w: orders of %s requested by %s", shop.ErrForbidden, email, caller)
	}
	list, err := s.Repo.ListByCustomer(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.Inventory.EnrichOrders(ctx, list)
}

// Cancel deletes the order and restores one unit of its coffee. When actor
// is non-empty only the customer who placed the order may cancel it.
func (s *Service) Cancel(ctx context.Context, orderID, actor string) (err error) {
	ctx, done := telemetry.Start(ctx, s.Metrics, "orders.cancel", attribute.String("order.id", orderID))
	defer func() {
		if errors.Is(err, shop.ErrOrderNotFound) {
			done(nil)
			return
		}
		done(err)
	}()

	if actor != "" {
		current, err := s.Repo.Get(ctx, orderID)
		if err != nil {
			return err
		}
		if current.CustomerEmail != actor {
			return fmt.Errorf("%w: %s did not place order %s", shop.ErrForbidden, actor, orderID)
		}
	}

	// Delete is the single point of truth: of two concurrent cancels only
	// one gets the order back, so stock is restored once.
	o, err := s.Repo.Delete(ctx, orderID)
	if err != nil {
		return err
	}
	if err := s.Inventory.Restore(ctx, o.CoffeeID); err != nil {
		return fmt.Errorf("restore stock for %s: %w", o.CoffeeID, err)
	}

	catalog.Publish(ctx, s.Events, s.Metrics, s.Producer, shop.TopicOrders, shop.EventOrderCancelled, o.CoffeeID,
		shop.OrderCancelledPayload{OrderID: o.ID, CoffeeID: o.CoffeeID, CustomerEmail: o.CustomerEmail})
	return nil
}
