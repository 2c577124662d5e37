package shop

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Updatable coffee fields. Owner email and likedBy are deliberately absent.
const (
	FieldName     = "name"
	FieldSupplier = "supplier"
	FieldTaste    = "taste"
	FieldCategory = "category"
	FieldDetails  = "details"
	FieldPhoto    = "photo"
	FieldPrice    = "price"
	FieldQuantity = "quantity"
)

// CoffeePatch is the allow-listed partial update of a coffee. Nil means untouched.
type CoffeePatch struct {
	Name     *string
	Supplier *string
	Taste    *string
	Category *string
	Details  *string
	Photo    *string
	Price    *float64
	Quantity *int
}

// PatchField is one field/value pair, named as stored in every backend.
type PatchField struct {
	Name  string
	Value any
}

// Fields lists the set fields in a fixed order.
func (p CoffeePatch) Fields() []PatchField {
	var out []PatchField
	add := func(name string, s *string) {
		if s != nil {
			out = append(out, PatchField{Name: name, Value: *s})
		}
	}
	add(FieldName, p.Name)
	add(FieldSupplier, p.Supplier)
	add(FieldTaste, p.Taste)
	add(FieldCategory, p.Category)
	add(FieldDetails, p.Details)
	add(FieldPhoto, p.Photo)
	if p.Price != nil {
		out = append(out, PatchField{Name: FieldPrice, Value: *p.Price})
	}
	if p.Quantity != nil {
		out = append(out, PatchField{Name: FieldQuantity, Value: *p.Quantity})
	}
	return out
}

// Empty reports whether the patch sets nothing.
func (p CoffeePatch) Empty() bool { return len(p.Fields()) == 0 }

// Apply writes the patch onto c and reports whether any value changed.
func (p CoffeePatch) Apply(c *Coffee) bool {
	changed := false
	setStr := func(dst *string, v *string) {
		if v != nil && *dst != *v {
			*dst = *v
			changed = true
		}
	}
	setStr(&c.Name, p.Name)
	setStr(&c.Supplier, p.Supplier)
	setStr(&c.Taste, p.Taste)
	setStr(&c.Category, p.Category)
	setStr(&c.Details, p.Details)
	setStr(&c.Photo, p.Photo)
	if p.Price != nil && c.Price != *p.Price {
		c.Price = *p.Price
		changed = true
	}
	if p.Quantity != nil && c.Quantity != *p.Quantity {
		c.Quantity = *p.Quantity
		changed = true
	}
	return changed
}

// DecodeCoffeePatch parses a JSON object into a patch. Fields outside the
// allow-list are rejected; price and quantity accept numbers or numeric strings.
func DecodeCoffeePatch(data []byte) (CoffeePatch, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return CoffeePatch{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	var p CoffeePatch
	for k, v := range raw {
		var err error
		switch k {
		case FieldName:
			p.Name, err = decodeString(v)
		case FieldSupplier:
			p.Supplier, err = decodeString(v)
		case FieldTaste:
			p.Taste, err = decodeString(v)
		case FieldCategory:
			p.Category, err = decodeString(v)
		case FieldDetails:
			p.Details, err = decodeString(v)
		case FieldPhoto:
			p.Photo, err = decodeString(v)
		case FieldPrice:
			var f float64
			if f, err = DecodePrice(v); err == nil {
				p.Price = &f
			}
		case FieldQuantity:
			var n int
			if n, err = DecodeQuantity(v); err == nil {
				p.Quantity = &n
			}
		default:
			return CoffeePatch{}, fmt.Errorf("%w: field %q is not updatable", ErrInvalidInput, k)
		}
		if err != nil {
			return CoffeePatch{}, fmt.Errorf("%s: %w", k, err)
		}
	}
	return p, nil
}

type coffeeInput struct {
	Name     string          `json:"name"`
	Supplier string          `json:"supplier"`
	Taste    string          `json:"taste"`
	Category string          `json:"category"`
	Details  string          `json:"details"`
	Photo    string          `json:"photo"`
	Price    json.RawMessage `json:"price"`
	Quantity json.RawMessage `json:"quantity"`
	Email    string          `json:"email"`
}

// DecodeNewCoffee parses a create request. Quantity is coerced to an integer;
// other fields are taken as given. Unknown fields are ignored.
func DecodeNewCoffee(data []byte) (*Coffee, error) {
	var in coffeeInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	c := &Coffee{
		Name:      in.Name,
		Supplier:  in.Supplier,
		Taste:     in.Taste,
		Category:  in.Category,
		Details:   in.Details,
		Photo:     in.Photo,
		Email:     in.Email,
		LikedBy:   []string{},
		CreatedAt: time.Now().UTC(),
	}
	if len(in.Quantity) > 0 {
		n, err := DecodeQuantity(in.Quantity)
		if err != nil {
			return nil, fmt.Errorf("quantity: %w", err)
		}
		c.Quantity = n
	}
	if len(in.Price) > 0 {
		f, err := DecodePrice(in.Price)
		if err != nil {
			return nil, fmt.Errorf("price: %w", err)
		}
		c.Price = f
	}
	return c, nil
}

// DecodeQuantity accepts 3, "3" or 3.0 and rejects negatives and fractions.
func DecodeQuantity(raw json.RawMessage) (int, error) {
	f, err := decodeNumber(raw)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < 0 || f > math.MaxInt32 {
		return 0, fmt.Errorf("%w: quantity must be a non-negative integer", ErrInvalidInput)
	}
	return int(f), nil
}

// DecodePrice accepts a number or a numeric string and rejects negatives.
func DecodePrice(raw json.RawMessage) (float64, error) {
	f, err := decodeNumber(raw)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	return f, nil
}

func decodeNumber(raw json.RawMessage) (float64, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return 0, fmt.Errorf("%w: expected a number", ErrInvalidInput)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidInput, s)
	}
	return f, nil
}

func decodeString(raw json.RawMessage) (*string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: expected a string", ErrInvalidInput)
	}
	return &s, nil
}
