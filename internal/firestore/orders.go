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

type orderRepo struct{ s *Store }

func (r orderRepo) col() *firestore.CollectionRef { return r.s.client.Collection(colOrders) }

func (r orderRepo) Insert(ctx context.Context, o *shop.Order) (string, error) {
	if o.OrderedAt.IsZero() {
		o.OrderedAt = r.s.now()
	}
	ref := r.col().NewDoc()
	if _, err := ref.Create(ctx, newOrderDoc(o)); err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}
	o.ID = ref.ID
	return ref.ID, nil
}

func (r orderRepo) Get(ctx context.Context, id string) (*shop.Order, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, shop.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	var d orderDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, err
	}
	o := d.toOrder(id)
	return &o, nil
}

func (r orderRepo) ListByCustomer(ctx context.Context, email string) ([]shop.Order, error) {
	it := r.col().Where("customerEmail", "==", email).OrderBy("orderedAt", firestore.Asc).Documents(ctx)
	defer it.Stop()

	out := []shop.Order{}
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read orders: %w", err)
		}
		var d orderDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, err
		}
		out = append(out, d.toOrder(snap.Ref.ID))
	}
}

// Delete reads and deletes in one transaction so concurrent cancels see the
// order at most once.
func (r orderRepo) Delete(ctx context.Context, id string) (*shop.Order, error) {
	ref := r.col().Doc(id)
	var out *shop.Order
	err := r.s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return shop.ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		var d orderDoc
		if err := snap.DataTo(&d); err != nil {
			return err
		}
		o := d.toOrder(id)
		out = &o
		return tx.Delete(ref)
	})
	if errors.Is(err, shop.ErrOrderNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("delete order %s: %w", id, err)
	}
	return out, nil
}
