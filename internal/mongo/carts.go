package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const addItemAttempts = 3

type cartStore struct{ s *Store }

func (r cartStore) Get(ctx context.Context, email string) (*shop.Cart, error) {
	var d cartDoc
	err := r.s.cart.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, shop.ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find cart: %w", err)
	}
	return d.toShop(), nil
}

// AddItem bumps an existing line, else pushes a new one, upserting the cart.
// Two concurrent first adds race on the unique email index; the loser
// retries and lands on the increment path.
func (r cartStore) AddItem(ctx context.Context, email string, item shop.CartItem) error {
	item.CartQuantity = 1
	for attempt := 1; ; attempt++ {
		now := r.s.now()
		res, err := r.s.cart.UpdateOne(ctx,
			bson.D{{Key: "email", Value: email}, {Key: "items._id", Value: item.ID}},
			bson.D{
				{Key: "$inc", Value: bson.D{{Key: "items.$.cartQuantity", Value: 1}}},
				{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}},
			},
		)
		if err != nil {
			return fmt.Errorf("increment cart line: %w", err)
		}
		if res.MatchedCount > 0 {
			return nil
		}

		_, err = r.s.cart.UpdateOne(ctx,
			bson.D{{Key: "email", Value: email}, {Key: "items._id", Value: bson.D{{Key: "$ne", Value: item.ID}}}},
			bson.D{
				{Key: "$push", Value: bson.D{{Key: "items", Value: cartItemFromShop(item)}}},
				{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}},
				{Key: "$setOnInsert", Value: bson.D{{Key: "createdAt", Value: now}}},
			},
			options.Update().SetUpsert(true),
		)
		if err == nil {
			return nil
		}
		if !mongo.IsDuplicateKeyError(err) || attempt == addItemAttempts {
			return fmt.Errorf("push cart line: %w", err)
		}
	}
}

func (r cartStore) SetQuantity(ctx context.Context, email, coffeeID string, quantity int) error {
	_, err := r.s.cart.UpdateOne(ctx,
		bson.D{{Key: "email", Value: email}, {Key: "items._id", Value: coffeeID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "items.$.cartQuantity", Value: quantity},
			{Key: "updatedAt", Value: r.s.now()},
		}}},
	)
	if err != nil {
		return fmt.Errorf("set cart quantity: %w", err)
	}
	return nil
}

func (r cartStore) RemoveItem(ctx context.Context, email, coffeeID string) error {
	_, err := r.s.cart.UpdateOne(ctx,
		bson.D{{Key: "email", Value: email}},
		bson.D{
			{Key: "$pull", Value: bson.D{{Key: "items", Value: bson.D{{Key: "_id", Value: coffeeID}}}}},
			{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: r.s.now()}}},
		},
	)
	if err != nil {
		return fmt.Errorf("remove cart line: %w", err)
	}
	return nil
}

func (r cartStore) Clear(ctx context.Context, email string) error {
	_, err := r.s.cart.UpdateOne(ctx,
		bson.D{{Key: "email", Value: email}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "items", Value: bson.A{}},
			{Key: "updatedAt", Value: r.s.now()},
		}}},
	)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
