// Package cart holds the per-session shopping cart: a mapping from game name
// to a positive quantity plus the totals derived from it.
package cart

import (
	"sort"

	"finitefield.org/boardgame-store/internal/store/catalog"
)

// Cart maps game names to quantities. A name is present only while its
// quantity is greater than zero. The zero value is an empty cart ready to use.
// Cart is not safe for concurrent use; each request works on its own copy.
type Cart struct {
	items map[string]int
}

// Line is a cart entry joined with its catalog record.
type Line struct {
	Game      catalog.Game
	Quantity  int
	LineTotal int64
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{items: make(map[string]int)}
}

// FromSnapshot rebuilds a cart from a stored mapping, dropping non-positive quantities.
func FromSnapshot(snapshot map[string]int) *Cart {
	c := New()
	for name, qty := range snapshot {
		c.SetQuantity(name, qty)
	}
	return c
}

// Snapshot returns a copy of the mapping suitable for serialisation.
func (c *Cart) Snapshot() map[string]int {
	out := make(map[string]int, len(c.items))
	for name, qty := range c.items {
		out[name] = qty
	}
	return out
}

// SetQuantity stores quantity for name. Quantities of zero or less remove the entry.
// Names are not checked against the catalog.
func (c *Cart) SetQuantity(name string, quantity int) {
	if quantity <= 0 {
		c.Remove(name)
		return
	}
	if c.items == nil {
		c.items = make(map[string]int)
	}
	c.items[name] = quantity
}

// Increase adds one unit of name.
func (c *Cart) Increase(name string) {
	c.SetQuantity(name, c.Quantity(name)+1)
}

// Decrease removes one unit of name; absent names are left untouched.
func (c *Cart) Decrease(name string) {
	if qty := c.Quantity(name); qty > 0 {
		c.SetQuantity(name, qty-1)
	}
}

// Remove deletes name. Removing an absent name is a no-op.
func (c *Cart) Remove(name string) {
	delete(c.items, name)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = make(map[string]int)
}

// Quantity returns the quantity stored for name, or 0.
func (c *Cart) Quantity(name string) int {
	return c.items[name]
}

// Len returns the number of distinct entries.
func (c *Cart) Len() int {
	return len(c.items)
}

// Empty reports whether the cart has no entries.
func (c *Cart) Empty() bool {
	return len(c.items) == 0
}

// Names returns the stored names in sorted order.
func (c *Cart) Names() []string {
	out := make([]string, 0, len(c.items))
	for name := range c.items {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// TotalItems sums every stored quantity, including names unknown to any catalog.
func (c *Cart) TotalItems() int {
	total := 0
	for _, qty := range c.items {
		total += qty
	}
	return total
}

// TotalPrice sums price*quantity over games, treating absent games as quantity 0.
func (c *Cart) TotalPrice(games []catalog.Game) int64 {
	var total int64
	for _, g := range games {
		total += g.Price * int64(c.items[g.Name])
	}
	return total
}

// Lines returns the entries that match games, in catalog order.
func (c *Cart) Lines(games []catalog.Game) []Line {
	lines := make([]Line, 0, len(c.items))
	for _, g := range games {
		qty := c.items[g.Name]
		if qty <= 0 {
			continue
		}
		lines = append(lines, Line{
			Game:      g,
			Quantity:  qty,
			LineTotal: g.Price * int64(qty),
		})
	}
	return lines
}
