package domain

import "github.com/shopspring/decimal"

// CatalogItem is a product offered by the shop. Catalog items are fixed at startup.
type CatalogItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// CartEntry is one line of the cart. Price is copied from the catalog item
// when the entry is first created.
type CartEntry struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Subtotal returns price * quantity for the entry.
func (e CartEntry) Subtotal() decimal.Decimal {
	return e.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Cart is an ordered list of entries, unique by name.
//
// Carts are values: the transition functions below never modify the cart
// they are given and always return a cart backed by a new slice.
type Cart struct {
	Entries []CartEntry `json:"entries"`
}

// NewCart returns an empty cart.
func NewCart() Cart {
	return Cart{Entries: []CartEntry{}}
}

// Clone returns a deep copy of the cart.
func (c Cart) Clone() Cart {
	entries := make([]CartEntry, len(c.Entries))
	copy(entries, c.Entries)
	return Cart{Entries: entries}
}

// FindEntryIndex returns the index of the entry with the given name, or -1.
func FindEntryIndex(c Cart, name string) int {
	for i := range c.Entries {
		if c.Entries[i].Name == name {
			return i
		}
	}
	return -1
}

// AddToCart adds one unit of item. An existing entry for the same name has
// its quantity incremented and keeps its original price; otherwise a new
// entry with quantity 1 is appended.
func AddToCart(c Cart, item CatalogItem) Cart {
	if FindEntryIndex(c, item.Name) >= 0 {
		return IncrementQuantity(c, item.Name)
	}

	next := make([]CartEntry, len(c.Entries), len(c.Entries)+1)
	copy(next, c.Entries)
	next = append(next, CartEntry{
		Name:     item.Name,
		Price:    item.Price,
		Quantity: 1,
	})
	return Cart{Entries: next}
}

// IncrementQuantity adds one unit to the entry with the given name.
// Unknown names leave the cart unchanged.
func IncrementQuantity(c Cart, name string) Cart {
	next := c.Clone()
	if i := FindEntryIndex(next, name); i >= 0 {
		next.Entries[i].Quantity++
	}
	return next
}

// RemoveFromCart drops the entry with the given name entirely.
// Unknown names leave the cart unchanged.
func RemoveFromCart(c Cart, name string) Cart {
	next := make([]CartEntry, 0, len(c.Entries))
	for _, e := range c.Entries {
		if e.Name != name {
			next = append(next, e)
		}
	}
	return Cart{Entries: next}
}

// CalculateTotal returns the sum of price * quantity over all entries.
func CalculateTotal(c Cart) decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.Entries {
		total = total.Add(e.Subtotal())
	}
	return total
}

// ItemCount returns the total number of units in the cart.
func ItemCount(c Cart) int {
	var count int
	for _, e := range c.Entries {
		count += e.Quantity
	}
	return count
}

// IsCartEmpty reports whether the cart has no entries.
func IsCartEmpty(c Cart) bool {
	return len(c.Entries) == 0
}
