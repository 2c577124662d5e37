package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type cartRepo struct{ s *Store }

func (r cartRepo) doc(email string) *firestore.DocumentRef {
	return r.s.client.Collection(colCart).Doc(email)
}

func (r cartRepo) Get(ctx context.Context, email string) (*shop.Cart, error) {
	snap, err := r.doc(email).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, shop.ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	var d cartDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, err
	}
	return d.toCart(), nil
}

func (r cartRepo) AddItem(ctx context.Context, email string, item shop.CartItem) error {
	return r.mutate(ctx, email, true, func(c *shop.Cart) { c.Add(item) })
}

func (r cartRepo) SetQuantity(ctx context.Context, email, coffeeID string, quantity int) error {
	return r.mutate(ctx, email, false, func(c *shop.Cart) { c.SetQuantity(coffeeID, quantity) })
}

func (r cartRepo) RemoveItem(ctx context.Context, email, coffeeID string) error {
	return r.mutate(ctx, email, false, func(c *shop.Cart) { c.Remove(coffeeID) })
}

func (r cartRepo) Clear(ctx context.Context, email string) error {
	return r.mutate(ctx, email, false, func(c *shop.Cart) { c.Clear() })
}

var errNoCart = errors.New("no cart")

// mutate applies fn to the stored cart in a transaction. Without create a
// missing cart is left alone.
func (r cartRepo) mutate(ctx context.Context, email string, create bool, fn func(*shop.Cart)) error {
	ref := r.doc(email)
	err := r.s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := r.s.now()
		var c *shop.Cart
		snap, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
			if !create {
				return errNoCart
			}
			c = &shop.Cart{Email: email, Items: []shop.CartItem{}, CreatedAt: now}
		case err != nil:
			return err
		default:
			var d cartDoc
			if err := snap.DataTo(&d); err != nil {
				return err
			}
			c = d.toCart()
		}
		fn(c)
		c.UpdatedAt = now
		return tx.Set(ref, newCartDoc(c))
	})
	if errors.Is(err, errNoCart) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cart mutation: %w", err)
	}
	return nil
}
