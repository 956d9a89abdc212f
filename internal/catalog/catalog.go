package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/utafrali/minicart/internal/domain"
	apperrors "github.com/utafrali/minicart/pkg/errors"
)

// Catalog is the fixed list of products that can be added to the cart.
type Catalog struct {
	items  []domain.CatalogItem
	byName map[string]int
}

// New builds a catalog from the given items, preserving their order.
// Names must be non-empty and unique, and prices must not be negative.
func New(items ...domain.CatalogItem) (*Catalog, error) {
	c := &Catalog{
		items:  make([]domain.CatalogItem, 0, len(items)),
		byName: make(map[string]int, len(items)),
	}

	for _, item := range items {
		if item.Name == "" {
			return nil, apperrors.InvalidInput("catalog item name is required")
		}
		if item.Price.IsNegative() {
			return nil, apperrors.InvalidInput(fmt.Sprintf("catalog item %q has a negative price", item.Name))
		}
		if _, dup := c.byName[item.Name]; dup {
			return nil, apperrors.AlreadyExists("catalog item", "name", item.Name)
		}
		c.byName[item.Name] = len(c.items)
		c.items = append(c.items, item)
	}

	return c, nil
}

// Default returns the shop's standard product list.
func Default() *Catalog {
	c, err := New(
		domain.CatalogItem{Name: "Mela", Price: decimal.RequireFromString("0.5")},
		domain.CatalogItem{Name: "Pane", Price: decimal.RequireFromString("1.2")},
		domain.CatalogItem{Name: "Latte", Price: decimal.RequireFromString("1.0")},
		domain.CatalogItem{Name: "Pasta", Price: decimal.RequireFromString("0.7")},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Items returns a copy of the catalog in display order.
func (c *Catalog) Items() []domain.CatalogItem {
	out := make([]domain.CatalogItem, len(c.items))
	copy(out, c.items)
	return out
}

// Lookup returns the item with the given name.
func (c *Catalog) Lookup(name string) (domain.CatalogItem, bool) {
	i, ok := c.byName[name]
	if !ok {
		return domain.CatalogItem{}, false
	}
	return c.items[i], true
}

// Len returns the number of products in the catalog.
func (c *Catalog) Len() int {
	return len(c.items)
}
