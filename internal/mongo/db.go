// Package mongo stores the shop collections in MongoDB: coffees, orders and
// cart, one cart document per email.
package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	collCoffees = "coffees"
	collOrders  = "orders"
	collCart    = "cart"
)

type Store struct {
	client  *mongo.Client
	coffees *mongo.Collection
	orders  *mongo.Collection
	cart    *mongo.Collection
	now     func() time.Time
}

// Connect opens a pooled client, pings the primary and ensures indexes.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(8).
		SetMinPoolSize(1).
		SetServerSelectionTimeout(10 * time.Second)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:  client,
		coffees: db.Collection(collCoffees),
		orders:  db.Collection(collOrders),
		cart:    db.Collection(collCart),
		now:     func() time.Time { return time.Now().UTC() },
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	if _, err := s.cart.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("cart email index: %w", err)
	}
	if _, err := s.coffees.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
	}); err != nil {
		return fmt.Errorf("coffees email index: %w", err)
	}
	if _, err := s.orders.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "customerEmail", Value: 1}},
	}); err != nil {
		return fmt.Errorf("orders customer index: %w", err)
	}
	return nil
}

func (s *Store) Coffees() shop.CoffeeStore { return coffeeStore{s} }
func (s *Store) Orders() shop.OrderStore   { return orderStore{s} }
func (s *Store) Carts() shop.CartStore     { return cartStore{s} }

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
