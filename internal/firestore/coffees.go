package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type coffeeRepo struct{ s *Store }

func (r coffeeRepo) col() *firestore.CollectionRef { return r.s.client.Collection(colCoffees) }

func (r coffeeRepo) List(ctx context.Context) ([]shop.Coffee, error) {
	return readCoffees(r.col().OrderBy("createdAt", firestore.Asc).Documents(ctx))
}

func (r coffeeRepo) ListByOwner(ctx context.Context, email string) ([]shop.Coffee, error) {
	return readCoffees(r.col().Where("email", "==", email).OrderBy("createdAt", firestore.Asc).Documents(ctx))
}

func readCoffees(it *firestore.DocumentIterator) ([]shop.Coffee, error) {
	defer it.Stop()
	out := []shop.Coffee{}
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read coffees: %w", err)
		}
		var d coffeeDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, err
		}
		out = append(out, d.toCoffee(snap.Ref.ID))
	}
}

func (r coffeeRepo) Get(ctx context.Context, id string) (*shop.Coffee, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, shop.ErrCoffeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get coffee %s: %w", id, err)
	}
	var d coffeeDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, err
	}
	c := d.toCoffee(id)
	return &c, nil
}

func (r coffeeRepo) Insert(ctx context.Context, c *shop.Coffee) (string, error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.s.now()
	}
	ref := r.col().NewDoc()
	if _, err := ref.Create(ctx, newCoffeeDoc(c)); err != nil {
		return "", fmt.Errorf("insert coffee: %w", err)
	}
	c.ID = ref.ID
	return ref.ID, nil
}

// patchUpdates maps the allow-listed patch onto Firestore field paths.
func patchUpdates(p shop.CoffeePatch) []firestore.Update {
	fields := p.Fields()
	ups := make([]firestore.Update, 0, len(fields))
	for _, f := range fields {
		v := f.Value
		if q, ok := v.(int); ok {
			v = int64(q)
		}
		ups = append(ups, firestore.Update{Path: f.Name, Value: v})
	}
	return ups
}

func (r coffeeRepo) Update(ctx context.Context, id string, patch shop.CoffeePatch) (shop.UpdateResult, error) {
	res := shop.UpdateResult{Acknowledged: true}
	if patch.Empty() {
		return res, nil
	}
	ref := r.col().Doc(id)
	err := r.s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		res = shop.UpdateResult{Acknowledged: true}
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return nil
		}
		if err != nil {
			return err
		}
		var d coffeeDoc
		if err := snap.DataTo(&d); err != nil {
			return err
		}
		res.MatchedCount = 1
		c := d.toCoffee(id)
		if !patch.Apply(&c) {
			return nil
		}
		res.ModifiedCount = 1
		return tx.Update(ref, patchUpdates(patch))
	})
	if err != nil {
		return shop.UpdateResult{}, fmt.Errorf("update coffee %s: %w", id, err)
	}
	return res, nil
}

func (r coffeeRepo) ToggleLike(ctx context.Context, id, email string) (bool, error) {
	ref := r.col().Doc(id)
	var liked bool
	err := r.s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return shop.ErrCoffeeNotFound
		}
		if err != nil {
			return err
		}
		var d coffeeDoc
		if err := snap.DataTo(&d); err != nil {
			return err
		}
		c := d.toCoffee(id)
		if c.LikedByUser(email) {
			liked = false
			return tx.Update(ref, []firestore.Update{{Path: "likedBy", Value: firestore.ArrayRemove(email)}})
		}
		liked = true
		return tx.Update(ref, []firestore.Update{{Path: "likedBy", Value: firestore.ArrayUnion(email)}})
	})
	if errors.Is(err, shop.ErrCoffeeNotFound) {
		return false, err
	}
	if err != nil {
		return false, fmt.Errorf("toggle like on %s: %w", id, err)
	}
	return liked, nil
}

func (r coffeeRepo) Reserve(ctx context.Context, id string) error {
	ref := r.col().Doc(id)
	err := r.s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return shop.ErrOutOfStock
		}
		if err != nil {
			return err
		}
		q, err := snap.DataAt("quantity")
		if err != nil {
			return err
		}
		if n, _ := q.(int64); n <= 0 {
			return shop.ErrOutOfStock
		}
		return tx.Update(ref, []firestore.Update{{Path: "quantity", Value: firestore.Increment(-1)}})
	})
	if errors.Is(err, shop.ErrOutOfStock) {
		return err
	}
	if err != nil {
		return fmt.Errorf("reserve %s: %w", id, err)
	}
	return nil
}

// Restore is a no-op for a coffee deleted in the meantime.
func (r coffeeRepo) Restore(ctx context.Context, id string) error {
	_, err := r.col().Doc(id).Update(ctx, []firestore.Update{{Path: "quantity", Value: firestore.Increment(1)}})
	if status.Code(err) == codes.NotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore %s: %w", id, err)
	}
	return nil
}
