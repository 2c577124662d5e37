package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 8
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Migrate creates the tables when missing. Statements are idempotent.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Store implements the shop ports on PostgreSQL. Natural order is insertion
// order via the seq columns.
type Store struct {
	DB  *pgxpool.Pool
	now func() time.Time
}

// Open connects and migrates.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{DB: pool, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *Store) Coffees() shop.CoffeeStore { return coffeeRepo{s} }
func (s *Store) Orders() shop.OrderStore   { return orderRepo{s} }
func (s *Store) Carts() shop.CartStore     { return cartRepo{s} }

func (s *Store) Close(context.Context) error {
	s.DB.Close()
	return nil
}

// extraColumn is the jsonb value for client fields; never nil so the column
// stays an object.
func extraColumn(e shop.Extra, owned []string) map[string]any {
	rest := e.Without(owned...)
	if rest == nil {
		return map[string]any{}
	}
	return rest
}

func extraFromColumn(m map[string]any) shop.Extra {
	if len(m) == 0 {
		return nil
	}
	return shop.Extra(m)
}
