package render

import (
	"github.com/utafrali/minicart/internal/domain"
	"github.com/utafrali/minicart/internal/store"
)

// ProductView is a catalog row ready for display.
type ProductView struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// EntryView is a cart row ready for display.
type EntryView struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	Subtotal string `json:"subtotal"`
}

// View is everything a renderer needs for one page or screen.
type View struct {
	Products  []ProductView `json:"products"`
	Entries   []EntryView   `json:"entries"`
	ItemCount int           `json:"item_count"`
	Total     string        `json:"total"`
	Empty     bool          `json:"empty"`
	Revision  uint64        `json:"revision"`
}

// NewView formats a catalog and cart snapshot for display.
func NewView(f Formatter, catalog []domain.CatalogItem, snap store.Snapshot) View {
	v := View{
		Products:  make([]ProductView, len(catalog)),
		Entries:   make([]EntryView, len(snap.Cart.Entries)),
		ItemCount: domain.ItemCount(snap.Cart),
		Total:     f.FormatPrice(snap.Total),
		Empty:     snap.Empty(),
		Revision:  snap.Revision,
	}

	for i, item := range catalog {
		v.Products[i] = ProductView{Name: item.Name, Price: f.FormatPrice(item.Price)}
	}
	for i, e := range snap.Cart.Entries {
		v.Entries[i] = EntryView{
			Name:     e.Name,
			Price:    f.FormatPrice(e.Price),
			Quantity: e.Quantity,
			Subtotal: f.FormatPrice(e.Subtotal()),
		}
	}

	return v
}

// FromStore reads a consistent snapshot from s and formats it.
func FromStore(f Formatter, s *store.CartStore) View {
	return NewView(f, s.Catalog(), s.Snapshot())
}
