package shop

import "context"

// CoffeeStore persists the coffees collection.
//
// Reserve and Restore are the inventory pair used by order placement and
// cancellation. Reserve must be a single guarded decrement: it fails with
// ErrOutOfStock when the coffee is missing or its quantity is not positive.
// Restore increments unconditionally and is a no-op for a missing coffee.
type CoffeeStore interface {
	List(ctx context.Context) ([]Coffee, error)
	Get(ctx context.Context, id string) (*Coffee, error)
	ListByOwner(ctx context.Context, email string) ([]Coffee, error)
	Insert(ctx context.Context, c *Coffee) (string, error)
	Update(ctx context.Context, id string, patch CoffeePatch) (UpdateResult, error)
	ToggleLike(ctx context.Context, id, email string) (liked bool, err error)
	Reserve(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
}

// OrderStore persists the orders collection.
type OrderStore interface {
	Insert(ctx context.Context, o *Order) (string, error)
	Get(ctx context.Context, id string) (*Order, error)
	ListByCustomer(ctx context.Context, email string) ([]Order, error)
	// Delete removes the order and returns what was stored, or ErrOrderNotFound.
	Delete(ctx context.Context, id string) (*Order, error)
}

// CartStore persists one cart document per email.
type CartStore interface {
	// Get returns ErrCartNotFound when the user never added anything.
	Get(ctx context.Context, email string) (*Cart, error)
	// AddItem increments cartQuantity when the coffee is already in the cart,
	// appends it with cartQuantity 1 otherwise, creating the cart if needed.
	AddItem(ctx context.Context, email string, item CartItem) error
	SetQuantity(ctx context.Context, email, coffeeID string, quantity int) error
	RemoveItem(ctx context.Context, email, coffeeID string) error
	// Clear empties the item list and keeps the document.
	Clear(ctx context.Context, email string) error
}

// Store bundles the three collections of one backing database.
type Store interface {
	Coffees() CoffeeStore
	Orders() OrderStore
	Carts() CartStore
	Close(ctx context.Context) error
}
