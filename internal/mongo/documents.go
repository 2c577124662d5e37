package mongo

import (
	"strconv"
	"strings"
	"time"

	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// price decodes whatever numeric form older writers left behind, including
// strings. Anything unreadable becomes 0.
type price float64

func (p *price) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	*p = price(number(bson.RawValue{Type: t, Value: data}))
	return nil
}

// quantity is the integer counterpart of price.
type quantity int

func (q *quantity) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	*q = quantity(number(bson.RawValue{Type: t, Value: data}))
	return nil
}

func number(v bson.RawValue) float64 {
	switch v.Type {
	case bsontype.Double:
		if f, ok := v.DoubleOK(); ok {
			return f
		}
	case bsontype.Int32:
		if n, ok := v.Int32OK(); ok {
			return float64(n)
		}
	case bsontype.Int64:
		if n, ok := v.Int64OK(); ok {
			return float64(n)
		}
	case bsontype.Decimal128:
		if d, ok := v.Decimal128OK(); ok {
			f, _ := strconv.ParseFloat(d.String(), 64)
			return f
		}
	case bsontype.String:
		if s, ok := v.StringValueOK(); ok {
			f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
			return f
		}
	}
	return 0
}

// plain turns decoded bson values into the shapes encoding/json writes.
func plain(v any) any {
	switch x := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(x))
		for _, e := range x {
			m[e.Key] = plain(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = plain(e)
		}
		return m
	case primitive.A:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	case primitive.ObjectID:
		return x.Hex()
	case primitive.DateTime:
		return x.Time().UTC()
	case primitive.Decimal128:
		return x.String()
	}
	return v
}

func extraFromDoc(m bson.M) shop.Extra {
	if len(m) == 0 {
		return nil
	}
	e := make(shop.Extra, len(m))
	for k, v := range m {
		e[k] = plain(v)
	}
	return e
}

func extraToDoc(e shop.Extra, owned []string) bson.M {
	rest := e.Without(owned...)
	if rest == nil {
		return nil
	}
	return bson.M(rest)
}

type coffeeDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Supplier  string             `bson:"supplier,omitempty"`
	Taste     string             `bson:"taste,omitempty"`
	Category  string             `bson:"category,omitempty"`
	Details   string             `bson:"details,omitempty"`
	Photo     string             `bson:"photo"`
	Price     price              `bson:"price"`
	Quantity  quantity           `bson:"quantity"`
	Email     string             `bson:"email"`
	LikedBy   []string           `bson:"likedBy"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func coffeeFromShop(c *shop.Coffee) coffeeDoc {
	liked := c.LikedBy
	if liked == nil {
		liked = []string{}
	}
	return coffeeDoc{
		Name:      c.Name,
		Supplier:  c.Supplier,
		Taste:     c.Taste,
		Category:  c.Category,
		Details:   c.Details,
		Photo:     c.Photo,
		Price:     price(c.Price),
		Quantity:  quantity(c.Quantity),
		Email:     c.Email,
		LikedBy:   liked,
		CreatedAt: c.CreatedAt,
	}
}

func (d coffeeDoc) toShop() shop.Coffee {
	liked := d.LikedBy
	if liked == nil {
		liked = []string{}
	}
	return shop.Coffee{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Supplier:  d.Supplier,
		Taste:     d.Taste,
		Category:  d.Category,
		Details:   d.Details,
		Photo:     d.Photo,
		Price:     float64(d.Price),
		Quantity:  int(d.Quantity),
		Email:     d.Email,
		LikedBy:   liked,
		CreatedAt: d.CreatedAt,
	}
}

// coffeeId is kept as the hex string the client sent. Fields the client
// added sit inline beside the known ones.
type orderDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	CoffeeID      string             `bson:"coffeeId"`
	CustomerEmail string             `bson:"customerEmail"`
	CustomerName  string             `bson:"customerName,omitempty"`
	Phone         string             `bson:"phone,omitempty"`
	Address       string             `bson:"address,omitempty"`
	Note          string             `bson:"note,omitempty"`
	OrderedAt     time.Time          `bson:"orderedAt"`
	Extra         bson.M             `bson:",inline"`
}

func orderFromShop(o *shop.Order) orderDoc {
	return orderDoc{
		CoffeeID:      o.CoffeeID,
		CustomerEmail: o.CustomerEmail,
		CustomerName:  o.CustomerName,
		Phone:         o.Phone,
		Address:       o.Address,
		Note:          o.Note,
		OrderedAt:     o.OrderedAt,
		Extra:         extraToDoc(o.Extra, shop.OrderKeys),
	}
}

func (d orderDoc) toShop() shop.Order {
	return shop.Order{
		ID:            d.ID.Hex(),
		CoffeeID:      d.CoffeeID,
		CustomerEmail: d.CustomerEmail,
		CustomerName:  d.CustomerName,
		Phone:         d.Phone,
		Address:       d.Address,
		Note:          d.Note,
		OrderedAt:     d.OrderedAt,
		Extra:         extraFromDoc(d.Extra),
	}
}

// Cart lines key on the coffee id string, matching items._id lookups.
type cartItemDoc struct {
	ID           string   `bson:"_id"`
	Name         string   `bson:"name,omitempty"`
	Photo        string   `bson:"photo,omitempty"`
	Price        price    `bson:"price,omitempty"`
	CartQuantity quantity `bson:"cartQuantity"`
	Extra        bson.M   `bson:",inline"`
}

type cartDoc struct {
	Email     string        `bson:"email"`
	Items     []cartItemDoc `bson:"items"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func cartItemFromShop(it shop.CartItem) cartItemDoc {
	return cartItemDoc{
		ID:           it.ID,
		Name:         it.Name,
		Photo:        it.Photo,
		Price:        price(it.Price),
		CartQuantity: quantity(it.CartQuantity),
		Extra:        extraToDoc(it.Extra, shop.CartItemKeys),
	}
}

func (d cartDoc) toShop() *shop.Cart {
	items := make([]shop.CartItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, shop.CartItem{
			ID:           it.ID,
			Name:         it.Name,
			Photo:        it.Photo,
			Price:        float64(it.Price),
			CartQuantity: int(it.CartQuantity),
			Extra:        extraFromDoc(it.Extra),
		})
	}
	return &shop.Cart{Email: d.Email, Items: items, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}

// objectID parses a hex id. Malformed ids cannot match any document.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}
