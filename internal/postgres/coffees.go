package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const coffeeColumns = `id, name, supplier, taste, category, details, photo, price, quantity, email, liked_by, created_at`

type coffeeRepo struct{ s *Store }

func scanCoffee(row pgx.Row) (shop.Coffee, error) {
	var c shop.Coffee
	err := row.Scan(&c.ID, &c.Name, &c.Supplier, &c.Taste, &c.Category, &c.Details, &c.Photo,
		&c.Price, &c.Quantity, &c.Email, &c.LikedBy, &c.CreatedAt)
	if c.LikedBy == nil {
		c.LikedBy = []string{}
	}
	return c, err
}

func (r coffeeRepo) List(ctx context.Context) ([]shop.Coffee, error) {
	return r.query(ctx, `SELECT `+coffeeColumns+` FROM coffees ORDER BY seq`)
}

func (r coffeeRepo) ListByOwner(ctx context.Context, email string) ([]shop.Coffee, error) {
	return r.query(ctx, `SELECT `+coffeeColumns+` FROM coffees WHERE email=$1 ORDER BY seq`, email)
}

func (r coffeeRepo) query(ctx context.Context, sql string, args ...any) ([]shop.Coffee, error) {
	rows, err := r.s.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query coffees: %w", err)
	}
	defer rows.Close()

	out := []shop.Coffee{}
	for rows.Next() {
		c, err := scanCoffee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r coffeeRepo) Get(ctx context.Context, id string) (*shop.Coffee, error) {
	c, err := scanCoffee(r.s.DB.QueryRow(ctx, `SELECT `+coffeeColumns+` FROM coffees WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shop.ErrCoffeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get coffee %s: %w", id, err)
	}
	return &c, nil
}

func (r coffeeRepo) Insert(ctx context.Context, c *shop.Coffee) (string, error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.s.now()
	}
	liked := c.LikedBy
	if liked == nil {
		liked = []string{}
	}
	id := uuid.NewString()
	_, err := r.s.DB.Exec(ctx, `
		INSERT INTO coffees (id, name, supplier, taste, category, details, photo, price, quantity, email, liked_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		id, c.Name, c.Supplier, c.Taste, c.Category, c.Details, c.Photo, c.Price, c.Quantity, c.Email, liked, c.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("insert coffee: %w", err)
	}
	c.ID = id
	return id, nil
}

// updateSQL builds the UPDATE for an allow-listed patch. Field names come from
// shop constants only, never from input. Rows whose values already match do
// not count as modified.
func updateSQL(p shop.CoffeePatch) (string, []any) {
	fields := p.Fields()
	sets := make([]string, 0, len(fields))
	diffs := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for i, f := range fields {
		sets = append(sets, fmt.Sprintf("%s=$%d", f.Name, i+2))
		diffs = append(diffs, fmt.Sprintf("%s IS DISTINCT FROM $%d", f.Name, i+2))
		args = append(args, f.Value)
	}
	sql := `WITH target AS (SELECT id, (` + strings.Join(diffs, " OR ") + `) AS changed FROM coffees WHERE id=$1 FOR UPDATE)
		UPDATE coffees SET ` + strings.Join(sets, ", ") + ` FROM target WHERE coffees.id = target.id
		RETURNING target.changed`
	return sql, args
}

func (r coffeeRepo) Update(ctx context.Context, id string, patch shop.CoffeePatch) (shop.UpdateResult, error) {
	res := shop.UpdateResult{Acknowledged: true}
	if patch.Empty() {
		return res, nil
	}
	sql, args := updateSQL(patch)
	var changed bool
	err := r.s.DB.QueryRow(ctx, sql, append([]any{id}, args...)...).Scan(&changed)
	if errors.Is(err, pgx.ErrNoRows) {
		return res, nil
	}
	if err != nil {
		return shop.UpdateResult{}, fmt.Errorf("update coffee %s: %w", id, err)
	}
	res.MatchedCount = 1
	if changed {
		res.ModifiedCount = 1
	}
	return res, nil
}

func (r coffeeRepo) ToggleLike(ctx context.Context, id, email string) (bool, error) {
	var liked bool
	err := r.s.DB.QueryRow(ctx, `
		UPDATE coffees SET liked_by = CASE
			WHEN $2 = ANY(liked_by) THEN array_remove(liked_by, $2)
			ELSE array_append(liked_by, $2)
		END
		WHERE id=$1
		RETURNING $2 = ANY(liked_by)`, id, email).Scan(&liked)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, shop.ErrCoffeeNotFound
	}
	if err != nil {
		return false, fmt.Errorf("toggle like on %s: %w", id, err)
	}
	return liked, nil
}

func (r coffeeRepo) Reserve(ctx context.Context, id string) error {
	ct, err := r.s.DB.Exec(ctx, `UPDATE coffees SET quantity = quantity - 1 WHERE id=$1 AND quantity > 0`, id)
	if err != nil {
		return fmt.Errorf("reserve %s: %w", id, err)
	}
	if ct.RowsAffected() != 1 {
		return shop.ErrOutOfStock
	}
	return nil
}

func (r coffeeRepo) Restore(ctx context.Context, id string) error {
	if _, err := r.s.DB.Exec(ctx, `UPDATE coffees SET quantity = quantity + 1 WHERE id=$1`, id); err != nil {
		return fmt.Errorf("restore %s: %w", id, err)
	}
	return nil
}
