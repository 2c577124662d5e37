package shop

// IndexOf returns the position of coffeeID in the item list, or -1.
func (c *Cart) IndexOf(coffeeID string) int {
	for i := range c.Items {
		if c.Items[i].ID == coffeeID {
			return i
		}
	}
	return -1
}

// Add merges item into the cart: an existing line gains one unit, a new line
// is appended with cartQuantity 1.
func (c *Cart) Add(item CartItem) {
	if i := c.IndexOf(item.ID); i >= 0 {
		c.Items[i].CartQuantity++
		return
	}
	item.CartQuantity = 1
	c.Items = append(c.Items, item)
}

// SetQuantity sets the line's cartQuantity; false when the line is absent.
func (c *Cart) SetQuantity(coffeeID string, quantity int) bool {
	i := c.IndexOf(coffeeID)
	if i < 0 {
		return false
	}
	c.Items[i].CartQuantity = quantity
	return true
}

// Remove drops the line regardless of its quantity, preserving order.
func (c *Cart) Remove(coffeeID string) bool {
	i := c.IndexOf(coffeeID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// Clear empties the item list.
func (c *Cart) Clear() { c.Items = []CartItem{} }
