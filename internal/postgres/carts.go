package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/jackc/pgx/v5"
)

type cartRepo struct{ s *Store }

func (r cartRepo) Get(ctx context.Context, email string) (*shop.Cart, error) {
	c := &shop.Cart{Email: email, Items: []shop.CartItem{}}
	err := r.s.DB.QueryRow(ctx, `SELECT created_at, updated_at FROM carts WHERE email=$1`, email).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shop.ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	rows, err := r.s.DB.Query(ctx, `
		SELECT coffee_id, name, photo, price, cart_quantity, extra
		FROM cart_items WHERE email=$1 ORDER BY seq`, email)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			it    shop.CartItem
			extra map[string]any
		)
		if err := rows.Scan(&it.ID, &it.Name, &it.Photo, &it.Price, &it.CartQuantity, &extra); err != nil {
			return nil, err
		}
		it.Extra = extraFromColumn(extra)
		c.Items = append(c.Items, it)
	}
	return c, rows.Err()
}

// AddItem upserts the cart row and merges the line in one transaction.
func (r cartRepo) AddItem(ctx context.Context, email string, item shop.CartItem) error {
	tx, err := r.s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := r.s.now()
	if _, err := tx.Exec(ctx, `
		INSERT INTO carts (email, created_at, updated_at) VALUES ($1, $2, $2)
		ON CONFLICT (email) DO UPDATE SET updated_at = EXCLUDED.updated_at`, email, now); err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO cart_items (email, coffee_id, name, photo, price, cart_quantity, extra)
		VALUES ($1,$2,$3,$4,$5,1,$6)
		ON CONFLICT (email, coffee_id) DO UPDATE SET cart_quantity = cart_items.cart_quantity + 1`,
		email, item.ID, item.Name, item.Photo, item.Price, extraColumn(item.Extra, shop.CartItemKeys)); err != nil {
		return fmt.Errorf("merge cart line: %w", err)
	}
	return tx.Commit(ctx)
}

func (r cartRepo) SetQuantity(ctx context.Context, email, coffeeID string, quantity int) error {
	return r.touch(ctx, email, `UPDATE cart_items SET cart_quantity=$3 WHERE email=$1 AND coffee_id=$2`, coffeeID, quantity)
}

func (r cartRepo) RemoveItem(ctx context.Context, email, coffeeID string) error {
	return r.touch(ctx, email, `DELETE FROM cart_items WHERE email=$1 AND coffee_id=$2`, coffeeID)
}

func (r cartRepo) Clear(ctx context.Context, email string) error {
	return r.touch(ctx, email, `DELETE FROM cart_items WHERE email=$1`)
}

// touch runs a line mutation and bumps updated_at on the cart row.
func (r cartRepo) touch(ctx context.Context, email, sql string, args ...any) error {
	tx, err := r.s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, sql, append([]any{email}, args...)...); err != nil {
		return fmt.Errorf("cart mutation: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE carts SET updated_at=$2 WHERE email=$1`, email, r.s.now()); err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	return tx.Commit(ctx)
}
