package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type orderStore struct{ s *Store }

func (r orderStore) Insert(ctx context.Context, o *shop.Order) (string, error) {
	if o.OrderedAt.IsZero() {
		o.OrderedAt = r.s.now()
	}
	res, err := r.s.orders.InsertOne(ctx, orderFromShop(o))
	if err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert order: unexpected id type %T", res.InsertedID)
	}
	o.ID = oid.Hex()
	return o.ID, nil
}

func (r orderStore) Get(ctx context.Context, id string) (*shop.Order, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, shop.ErrOrderNotFound
	}
	var d orderDoc
	err := r.s.orders.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, shop.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order %s: %w", id, err)
	}
	o := d.toShop()
	return &o, nil
}

func (r orderStore) ListByCustomer(ctx context.Context, email string) ([]shop.Order, error) {
	cur, err := r.s.orders.Find(ctx, bson.D{{Key: "customerEmail", Value: email}})
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	out := make([]shop.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toShop())
	}
	return out, nil
}

// Delete removes and returns the order in one step.
func (r orderStore) Delete(ctx context.Context, id string) (*shop.Order, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, shop.ErrOrderNotFound
	}
	var d orderDoc
	err := r.s.orders.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, shop.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete order %s: %w", id, err)
	}
	o := d.toShop()
	return &o, nil
}
