// Package firestore implements the shop store ports on Cloud Firestore.
// Stock, like and cart mutations run inside transactions.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"google.golang.org/api/option"
)

const (
	colCoffees = "coffees"
	colOrders  = "orders"
	colCart    = "cart"
)

type Store struct {
	client *firestore.Client
	now    func() time.Time
}

// Open builds a client for projectID. An empty credFile falls back to
// Application Default Credentials.
func Open(ctx context.Context, projectID, credFile string) (*Store, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, errors.New("firestore: project id is empty")
	}
	var opts []option.ClientOption
	if f := strings.TrimSpace(credFile); f != "" {
		opts = append(opts, option.WithCredentialsFile(f))
	}
	c, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient (project=%s): %w", projectID, err)
	}
	return &Store{client: c, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *Store) Coffees() shop.CoffeeStore { return coffeeRepo{s} }
func (s *Store) Orders() shop.OrderStore   { return orderRepo{s} }
func (s *Store) Carts() shop.CartStore     { return cartRepo{s} }

func (s *Store) Close(context.Context) error { return s.client.Close() }
