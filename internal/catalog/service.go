package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-coffee-shop/internal/logging"
	"github.com/ariefcatur/go-coffee-shop/internal/metrics"
	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/ariefcatur/go-coffee-shop/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Lookup fetches one coffee by id.
type Lookup interface {
	Get(ctx context.Context, id string) (*shop.Coffee, error)
}

// Cache is a read-through view over the coffees collection.
type Cache interface {
	Lookup
	Invalidate(ctx context.Context, id string) error
}

// Service owns the coffees collection. Cache, Events and Metrics are optional.
type Service struct {
	Store    shop.CoffeeStore
	Cache    Cache
	Events   shop.Publisher
	Metrics  *metrics.Metrics
	Producer string
}

func (s *Service) List(ctx context.Context) (_ []shop.Coffee, err error) {
	ctx, done := telemetry.Start(ctx, s.Metrics, "catalog.list")
	defer func() { done(err) }()

	return s.Store.List(ctx)
}

// Get returns shop.ErrCoffeeNotFound when the id matches nothing.
func (s *Service) Get(ctx context.Context, id string) (_ *shop.Coffee, err error) {
	ctx, done := telemetry.Start(ctx, s.Metrics, "catalog.get", attribute.String("coffee.id", id))
	defer func() { done(ignoreNotFound(err)) }()

	return s.Store.Get(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, email string) (_ []shop.Coffee, err error) {
	ctx, done := telemetry.Start(ctx, s.Metrics, "catalog.list_by_owner")
	defer func() { done(err) }()

	return s.Store.ListByOwner(ctx, email)
}

func (s *Service) Create(ctx context.Context, c *shop.Coffee) (_ string, err error) {
	ctx, done := telemetry.Start(ctx, s.Metrics, "catalog.create")
	defer func() { done(err) }()

	if c.LikedBy == nil {
		c.LikedBy = []string{}
	}
	id, err := s.Store.Insert(ctx, c)
	if err != nil {
		return "", fmt.Errorf("insert coffee: %w", err)
	}
	s.publish(ctx, shop.EventCoffeeCreated, id, shop.CoffeeChangedPayload{CoffeeID: id, Owner: c.Email})
	return id, nil
}

// Update applies an allow-listed patch. When actor is non-empty only the
// coffee's owner may update it. A missing coffee yields a zero match count.
func (s *Service) Update(ctx context.Context, id string, patch shop.CoffeePatch, actor string) (_ shop.UpdateResult, err error) {
	ctx, done := telemetry.Start(ctx, s.Metrics, "catalog.update", attribute.String("coffee.id", id))
	defer func() { done(err) }()

	if patch.Empty() {
		return shop.UpdateResult{}, fmt.Errorf("%w: nothing to update", shop.ErrInvalidInput)
	}
	if actor != "" {
		current, err := s.Store.Get(ctx, id)
		switch {
		case errors.Is(err, shop.ErrCoffeeNotFound):
			return shop.UpdateResult{Acknowledged: true}, nil
		case err != nil:
			return shop.UpdateResult{}, err
		case current.Email != actor:
			return shop.UpdateResult{}, fmt.Errorf("%w: %s does not own coffee %s", shop.ErrForbidden, actor, id)
		}
	}

	res, err := s.Store.Update(ctx, id, patch)
	if err != nil {
		return shop.UpdateResult{}, fmt.Errorf("update coffee: %w", err)
	}
	if res.MatchedCount > 0 {
		s.invalidate(ctx, id)
		fields := make([]string, 0, 8)
		for _, f := range patch.Fields() {
			fields = append(fields, f.Name)
		}
		s.publish(ctx, shop.EventCoffeeUpdated, id, shop.CoffeeChangedPayload{CoffeeID: id, Fields: fields})
	}
	return res, nil
}

// ToggleLike flips email's membership in likedBy and reports the new state.
func (s *Service) ToggleLike(ctx context.Context, id, email string) (_ bool, err error) {
	ctx, done := telemetry.Start(ctx, s.Metrics, "catalog.toggle_like", attribute.String("coffee.id", id))
	defer func() { done(ignoreNotFound(err)) }()

	if email == "" {
		return false, fmt.Errorf("%w: email is required", shop.ErrInvalidInput)
	}
	liked, err := s.Store.ToggleLike(ctx, id, email)
	if err != nil {
		return false, err
	}
	s.publish(ctx, shop.EventCoffeeLiked, id, shop.CoffeeLikedPayload{CoffeeID: id, Email: email, Liked: liked})
	return liked, nil
}

// Reserve takes one unit of stock; shop.ErrOutOfStock when none is left.
func (s *Service) Reserve(ctx context.Context, id string) error {
	if err := s.Store.Reserve(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// Restore gives one unit of stock back. Missing coffees are ignored.
func (s *Service) Restore(ctx context.Context, id string) error {
	if err := s.Store.Restore(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// Lookup reads a coffee for enrichment, through the cache when configured.
func (s *Service) Lookup(ctx context.Context, id string) (*shop.Coffee, error) {
	if s.Cache != nil {
		return s.Cache.Get(ctx, id)
	}
	return s.Store.Get(ctx, id)
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("coffee_cache_invalidate_failed", zap.String("coffee_id", id), zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, eventType, coffeeID string, payload any) {
	publish(ctx, s.Events, s.Metrics, s.Producer, shop.TopicCatalog, eventType, coffeeID, payload)
}

func ignoreNotFound(err error) error {
	if errors.Is(err, shop.ErrCoffeeNotFound) {
		return nil
	}
	return err
}
