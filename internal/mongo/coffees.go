package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type coffeeStore struct{ s *Store }

func (r coffeeStore) List(ctx context.Context) ([]shop.Coffee, error) {
	return r.find(ctx, bson.D{})
}

func (r coffeeStore) ListByOwner(ctx context.Context, email string) ([]shop.Coffee, error) {
	return r.find(ctx, bson.D{{Key: "email", Value: email}})
}

func (r coffeeStore) find(ctx context.Context, filter bson.D) ([]shop.Coffee, error) {
	cur, err := r.s.coffees.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find coffees: %w", err)
	}
	var docs []coffeeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode coffees: %w", err)
	}
	out := make([]shop.Coffee, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toShop())
	}
	return out, nil
}

func (r coffeeStore) Get(ctx context.Context, id string) (*shop.Coffee, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, shop.ErrCoffeeNotFound
	}
	var d coffeeDoc
	err := r.s.coffees.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, shop.ErrCoffeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find coffee %s: %w", id, err)
	}
	c := d.toShop()
	return &c, nil
}

func (r coffeeStore) Insert(ctx context.Context, c *shop.Coffee) (string, error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.s.now()
	}
	res, err := r.s.coffees.InsertOne(ctx, coffeeFromShop(c))
	if err != nil {
		return "", fmt.Errorf("insert coffee: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert coffee: unexpected id type %T", res.InsertedID)
	}
	c.ID = oid.Hex()
	return c.ID, nil
}

func (r coffeeStore) Update(ctx context.Context, id string, patch shop.CoffeePatch) (shop.UpdateResult, error) {
	oid, ok := objectID(id)
	if !ok {
		return shop.UpdateResult{Acknowledged: true}, nil
	}
	res, err := r.s.coffees.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: patchSet(patch)}})
	if err != nil {
		return shop.UpdateResult{}, fmt.Errorf("update coffee %s: %w", id, err)
	}
	return shop.UpdateResult{Acknowledged: true, MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}

// patchSet turns an allow-listed patch into a $set document.
func patchSet(p shop.CoffeePatch) bson.D {
	set := bson.D{}
	for _, f := range p.Fields() {
		set = append(set, bson.E{Key: f.Name, Value: f.Value})
	}
	return set
}

// toggleLikePipeline flips email's membership in likedBy in one update.
func toggleLikePipeline(email string) mongo.Pipeline {
	liked := bson.D{{Key: "$ifNull", Value: bson.A{"$likedBy", bson.A{}}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "likedBy", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$in", Value: bson.A{email, liked}}},
			bson.D{{Key: "$filter", Value: bson.D{
				{Key: "input", Value: liked},
				{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", email}}}},
			}}},
			bson.D{{Key: "$concatArrays", Value: bson.A{liked, bson.A{email}}}},
		}}}}}}},
	}
}

func (r coffeeStore) ToggleLike(ctx context.Context, id, email string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, shop.ErrCoffeeNotFound
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.D{{Key: "likedBy", Value: 1}})
	var d coffeeDoc
	err := r.s.coffees.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, toggleLikePipeline(email), opts).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, shop.ErrCoffeeNotFound
	}
	if err != nil {
		return false, fmt.Errorf("toggle like on %s: %w", id, err)
	}
	c := d.toShop()
	return c.LikedByUser(email), nil
}

// Reserve decrements quantity only while it is positive.
func (r coffeeStore) Reserve(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return shop.ErrOutOfStock
	}
	res, err := r.s.coffees.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}, {Key: "quantity", Value: bson.D{{Key: "$gt", Value: 0}}}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "quantity", Value: -1}}}},
	)
	if err != nil {
		return fmt.Errorf("reserve %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return shop.ErrOutOfStock
	}
	return nil
}

func (r coffeeStore) Restore(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return nil
	}
	_, err := r.s.coffees.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "quantity", Value: 1}}}},
	)
	if err != nil {
		return fmt.Errorf("restore %s: %w", id, err)
	}
	return nil
}
