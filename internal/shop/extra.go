package shop

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"time"
)

// Extra holds client fields the service stores and returns without
// interpreting them.
type Extra map[string]any

// Clone is a shallow copy; nil stays nil.
func (e Extra) Clone() Extra { return maps.Clone(e) }

// Without returns a copy minus keys, nil when nothing is left.
func (e Extra) Without(keys ...string) Extra {
	out := make(Extra, len(e))
	for k, v := range e {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Wire names of the fields owned by Order and CartItem.
const (
	keyID            = "_id"
	keyCoffeeID      = "coffeeId"
	keyCustomerEmail = "customerEmail"
	keyCustomerName  = "customerName"
	keyPhone         = "phone"
	keyAddress       = "address"
	keyNote          = "note"
	keyOrderedAt     = "orderedAt"
	keyName          = "name"
	keyPhoto         = "photo"
	keyPrice         = "price"
	keyQuantity      = "quantity"
	keyCartQuantity  = "cartQuantity"
)

// OrderKeys are the stored fields an order's Extra never carries.
var OrderKeys = []string{keyID, keyCoffeeID, keyCustomerEmail, keyCustomerName, keyPhone, keyAddress, keyNote, keyOrderedAt}

// CartItemKeys are the stored fields a cart item's Extra never carries.
var CartItemKeys = []string{keyID, keyName, keyPhoto, keyPrice, keyCartQuantity}

type object map[string]json.RawMessage

func decodeObject(data []byte) (object, error) {
	var o object
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return o, nil
}

// take removes and returns key, nil when absent.
func (o object) take(key string) json.RawMessage {
	v, ok := o[key]
	if !ok {
		return nil
	}
	delete(o, key)
	return v
}

// str reads key as text; numbers and booleans keep their literal form.
func (o object) str(key string) string {
	raw := o.take(key)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// rest decodes whatever keys are left.
func (o object) rest() (Extra, error) {
	if len(o) == 0 {
		return nil, nil
	}
	e := make(Extra, len(o))
	for k, raw := range o {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInput, k, err)
		}
		e[k] = v
	}
	return e, nil
}

func (e Extra) fields(n int) map[string]any {
	m := make(map[string]any, len(e)+n)
	for k, v := range e {
		m[k] = v
	}
	return m
}

func putString(m map[string]any, key, v string) {
	if v != "" {
		m[key] = v
	}
}

func putPtr[T any](m map[string]any, key string, v *T) {
	if v != nil {
		m[key] = *v
	}
}

// pull moves key out of e into a T, nil when absent or of another type.
func pull[T any](e Extra, key string) *T {
	v, ok := e[key]
	if !ok {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		return nil
	}
	delete(e, key)
	return &t
}

func (o Order) object() map[string]any {
	m := o.Extra.Without(OrderKeys...).fields(8)
	m[keyID] = o.ID
	m[keyCoffeeID] = o.CoffeeID
	m[keyCustomerEmail] = o.CustomerEmail
	putString(m, keyCustomerName, o.CustomerName)
	putString(m, keyPhone, o.Phone)
	putString(m, keyAddress, o.Address)
	putString(m, keyNote, o.Note)
	m[keyOrderedAt] = o.OrderedAt
	return m
}

func (o Order) MarshalJSON() ([]byte, error) { return json.Marshal(o.object()) }

// UnmarshalJSON keeps unknown fields in Extra. An orderedAt that is not
// RFC 3339 is dropped.
func (o *Order) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}
	out := Order{
		ID:            obj.str(keyID),
		CoffeeID:      obj.str(keyCoffeeID),
		CustomerEmail: obj.str(keyCustomerEmail),
		CustomerName:  obj.str(keyCustomerName),
		Phone:         obj.str(keyPhone),
		Address:       obj.str(keyAddress),
		Note:          obj.str(keyNote),
	}
	if raw := obj.take(keyOrderedAt); raw != nil {
		var at time.Time
		if json.Unmarshal(raw, &at) == nil {
			out.OrderedAt = at
		}
	}
	if out.Extra, err = obj.rest(); err != nil {
		return err
	}
	*o = out
	return nil
}

// MarshalJSON overlays the live coffee fields on the stored order.
func (v OrderView) MarshalJSON() ([]byte, error) {
	m := v.Order.object()
	putPtr(m, keyName, v.Name)
	putPtr(m, keyPhoto, v.Photo)
	putPtr(m, keyPrice, v.Price)
	putPtr(m, keyQuantity, v.Quantity)
	return json.Marshal(m)
}

func (v *OrderView) UnmarshalJSON(data []byte) error {
	var o Order
	if err := o.UnmarshalJSON(data); err != nil {
		return err
	}
	out := OrderView{Order: o}
	out.Name = pull[string](out.Extra, keyName)
	out.Photo = pull[string](out.Extra, keyPhoto)
	out.Price = pull[float64](out.Extra, keyPrice)
	out.Quantity = pull[int](out.Extra, keyQuantity)
	if len(out.Extra) == 0 {
		out.Extra = nil
	}
	*v = out
	return nil
}

func (it CartItem) MarshalJSON() ([]byte, error) {
	m := it.Extra.Without(CartItemKeys...).fields(5)
	m[keyID] = it.ID
	putString(m, keyName, it.Name)
	putString(m, keyPhoto, it.Photo)
	if it.Price != 0 {
		m[keyPrice] = it.Price
	}
	m[keyCartQuantity] = it.CartQuantity
	return json.Marshal(m)
}

// UnmarshalJSON accepts the coffee as the client holds it. Price and
// cartQuantity that are not numeric are dropped; they are never trusted.
func (it *CartItem) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}
	out := CartItem{
		ID:    obj.str(keyID),
		Name:  obj.str(keyName),
		Photo: obj.str(keyPhoto),
	}
	if raw := obj.take(keyPrice); raw != nil {
		out.Price, _ = DecodePrice(raw)
	}
	if raw := obj.take(keyCartQuantity); raw != nil {
		out.CartQuantity, _ = DecodeQuantity(raw)
	}
	if out.Extra, err = obj.rest(); err != nil {
		return err
	}
	*it = out
	return nil
}

func (l CartLine) MarshalJSON() ([]byte, error) {
	m := l.Extra.Without(CartItemKeys...).fields(5)
	m[keyID] = l.ID
	m[keyCartQuantity] = l.CartQuantity
	putPtr(m, keyName, l.Name)
	putPtr(m, keyPhoto, l.Photo)
	putPtr(m, keyPrice, l.Price)
	return json.Marshal(m)
}

func (l *CartLine) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}
	out := CartLine{ID: obj.str(keyID)}
	if raw := obj.take(keyCartQuantity); raw != nil {
		out.CartQuantity, _ = DecodeQuantity(raw)
	}
	if out.Extra, err = obj.rest(); err != nil {
		return err
	}
	out.Name = pull[string](out.Extra, keyName)
	out.Photo = pull[string](out.Extra, keyPhoto)
	out.Price = pull[float64](out.Extra, keyPrice)
	if len(out.Extra) == 0 {
		out.Extra = nil
	}
	*l = out
	return nil
}
