package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const orderColumns = `id, coffee_id, customer_email, customer_name, phone, address, note, ordered_at, extra`

type orderRepo struct{ s *Store }

func scanOrder(row pgx.Row) (shop.Order, error) {
	var (
		o     shop.Order
		extra map[string]any
	)
	err := row.Scan(&o.ID, &o.CoffeeID, &o.CustomerEmail, &o.CustomerName, &o.Phone, &o.Address, &o.Note, &o.OrderedAt, &extra)
	o.Extra = extraFromColumn(extra)
	return o, err
}

func (r orderRepo) Insert(ctx context.Context, o *shop.Order) (string, error) {
	if o.OrderedAt.IsZero() {
		o.OrderedAt = r.s.now()
	}
	id := uuid.NewString()
	_, err := r.s.DB.Exec(ctx, `
		INSERT INTO orders (id, coffee_id, customer_email, customer_name, phone, address, note, ordered_at, extra)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		id, o.CoffeeID, o.CustomerEmail, o.CustomerName, o.Phone, o.Address, o.Note, o.OrderedAt,
		extraColumn(o.Extra, shop.OrderKeys))
	if err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}
	o.ID = id
	return id, nil
}

func (r orderRepo) Get(ctx context.Context, id string) (*shop.Order, error) {
	o, err := scanOrder(r.s.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shop.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return &o, nil
}

func (r orderRepo) ListByCustomer(ctx context.Context, email string) ([]shop.Order, error) {
	rows, err := r.s.DB.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE customer_email=$1 ORDER BY seq`, email)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	out := []shop.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r orderRepo) Delete(ctx context.Context, id string) (*shop.Order, error) {
	o, err := scanOrder(r.s.DB.QueryRow(ctx, `DELETE FROM orders WHERE id=$1 RETURNING `+orderColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shop.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete order %s: %w", id, err)
	}
	return &o, nil
}
