package firestore

import (
	"time"

	"github.com/ariefcatur/go-coffee-shop/internal/shop"
)

type coffeeDoc struct {
	Name      string    `firestore:"name"`
	Supplier  string    `firestore:"supplier,omitempty"`
	Taste     string    `firestore:"taste,omitempty"`
	Category  string    `firestore:"category,omitempty"`
	Details   string    `firestore:"details,omitempty"`
	Photo     string    `firestore:"photo"`
	Price     float64   `firestore:"price"`
	Quantity  int64     `firestore:"quantity"`
	Email     string    `firestore:"email"`
	LikedBy   []string  `firestore:"likedBy"`
	CreatedAt time.Time `firestore:"createdAt"`
}

func newCoffeeDoc(c *shop.Coffee) coffeeDoc {
	liked := c.LikedBy
	if liked == nil {
		liked = []string{}
	}
	return coffeeDoc{
		Name: c.Name, Supplier: c.Supplier, Taste: c.Taste, Category: c.Category,
		Details: c.Details, Photo: c.Photo, Price: c.Price, Quantity: int64(c.Quantity),
		Email: c.Email, LikedBy: liked, CreatedAt: c.CreatedAt,
	}
}

func (d coffeeDoc) toCoffee(id string) shop.Coffee {
	liked := d.LikedBy
	if liked == nil {
		liked = []string{}
	}
	return shop.Coffee{
		ID: id, Name: d.Name, Supplier: d.Supplier, Taste: d.Taste, Category: d.Category,
		Details: d.Details, Photo: d.Photo, Price: d.Price, Quantity: int(d.Quantity),
		Email: d.Email, LikedBy: liked, CreatedAt: d.CreatedAt,
	}
}

type orderDoc struct {
	CoffeeID      string    `firestore:"coffeeId"`
	CustomerEmail string    `firestore:"customerEmail"`
	CustomerName  string    `firestore:"customerName,omitempty"`
	Phone         string    `firestore:"phone,omitempty"`
	Address       string    `firestore:"address,omitempty"`
	Note          string    `firestore:"note,omitempty"`
	OrderedAt     time.Time `firestore:"orderedAt"`
	// fields the client added, kept as sent
	Extra map[string]interface{} `firestore:"extra,omitempty"`
}

func newOrderDoc(o *shop.Order) orderDoc {
	return orderDoc{
		CoffeeID: o.CoffeeID, CustomerEmail: o.CustomerEmail, CustomerName: o.CustomerName,
		Phone: o.Phone, Address: o.Address, Note: o.Note, OrderedAt: o.OrderedAt,
		Extra: o.Extra.Without(shop.OrderKeys...),
	}
}

func (d orderDoc) toOrder(id string) shop.Order {
	return shop.Order{
		ID: id, CoffeeID: d.CoffeeID, CustomerEmail: d.CustomerEmail, CustomerName: d.CustomerName,
		Phone: d.Phone, Address: d.Address, Note: d.Note, OrderedAt: d.OrderedAt,
		Extra: extra(d.Extra),
	}
}

type cartItemDoc struct {
	ID           string  `firestore:"_id"`
	Name         string  `firestore:"name,omitempty"`
	Photo        string  `firestore:"photo,omitempty"`
	Price        float64 `firestore:"price,omitempty"`
	CartQuantity int64   `firestore:"cartQuantity"`

	Extra map[string]interface{} `firestore:"extra,omitempty"`
}

// cartDoc is stored under the owner's email as document id.
type cartDoc struct {
	Email     string        `firestore:"email"`
	Items     []cartItemDoc `firestore:"items"`
	CreatedAt time.Time     `firestore:"createdAt"`
	UpdatedAt time.Time     `firestore:"updatedAt"`
}

func newCartDoc(c *shop.Cart) cartDoc {
	items := make([]cartItemDoc, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, cartItemDoc{
			ID: it.ID, Name: it.Name, Photo: it.Photo, Price: it.Price, CartQuantity: int64(it.CartQuantity),
			Extra: it.Extra.Without(shop.CartItemKeys...),
		})
	}
	return cartDoc{Email: c.Email, Items: items, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

func (d cartDoc) toCart() *shop.Cart {
	c := &shop.Cart{Email: d.Email, Items: make([]shop.CartItem, 0, len(d.Items)), CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
	for _, it := range d.Items {
		c.Items = append(c.Items, shop.CartItem{
			ID: it.ID, Name: it.Name, Photo: it.Photo, Price: it.Price, CartQuantity: int(it.CartQuantity),
			Extra: extra(it.Extra),
		})
	}
	return c
}

func extra(m map[string]interface{}) shop.Extra {
	if len(m) == 0 {
		return nil
	}
	return shop.Extra(m)
}
