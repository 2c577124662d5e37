package shop

import "time"

// Coffee is a catalog record. Email is the owner; LikedBy is treated as a set.
type Coffee struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Supplier  string    `json:"supplier,omitempty"`
	Taste     string    `json:"taste,omitempty"`
	Category  string    `json:"category,omitempty"`
	Details   string    `json:"details,omitempty"`
	Photo     string    `json:"photo"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	Email     string    `json:"email"`
	LikedBy   []string  `json:"likedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikedByUser reports whether email is in the LikedBy set.
func (c *Coffee) LikedByUser(email string) bool {
	for _, e := range c.LikedBy {
		if e == email {
			return true
		}
	}
	return false
}

// Order references a coffee by id only; the coffee may change or disappear independently.
type Order struct {
	ID            string    `json:"_id"`
	CoffeeID      string    `json:"coffeeId"`
	CustomerEmail string    `json:"customerEmail"`
	CustomerName  string    `json:"customerName,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	Note          string    `json:"note,omitempty"`
	OrderedAt     time.Time `json:"orderedAt"`
	Extra         Extra     `json:"-"` // any other field the client sent
}

// OrderView is an order with live catalog fields overlaid. The overlay is
// absent when the referenced coffee no longer exists.
type OrderView struct {
	Order
	Name     *string  `json:"name,omitempty"`
	Photo    *string  `json:"photo,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Quantity *int     `json:"quantity,omitempty"`
}

// CartItem is one stored line. Name, Photo and Price are whatever the client
// sent when the line was created and are never trusted on read. The rest of
// the client's coffee is kept in Extra.
type CartItem struct {
	ID           string  `json:"_id"`
	Name         string  `json:"name,omitempty"`
	Photo        string  `json:"photo,omitempty"`
	Price        float64 `json:"price,omitempty"`
	CartQuantity int     `json:"cartQuantity"`
	Extra        Extra   `json:"-"`
}

// Cart is the single per-user cart document, keyed by email.
type Cart struct {
	Email     string     `json:"email"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartLine is a cart item as returned to clients: the stored line with live
// name, photo and price.
type CartLine struct {
	ID           string   `json:"_id"`
	CartQuantity int      `json:"cartQuantity"`
	Name         *string  `json:"name,omitempty"`
	Photo        *string  `json:"photo,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Extra        Extra    `json:"-"`
}

// CartView is the enriched cart response shape.
type CartView struct {
	Items []CartLine `json:"items"`
}

// EmptyCart is the view for a user without a cart document.
func EmptyCart() CartView { return CartView{Items: []CartLine{}} }

// UpdateResult mirrors a document-store update acknowledgement.
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}
