package render

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Catalog writes the product list as aligned text.
func Catalog(w io.Writer, v View) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Lista Prodotti")
	for _, p := range v.Products {
		fmt.Fprintf(tw, "  %s\t%s\n", p.Name, p.Price)
	}
	return tw.Flush()
}

// Cart writes the cart as aligned text, or a one-line notice when it is empty.
func Cart(w io.Writer, v View) error {
	if v.Empty {
		_, err := fmt.Fprintln(w, "Carrello vuoto")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Carrello")
	for _, e := range v.Entries {
		fmt.Fprintf(tw, "  %s\t%s\tQuantità: %d\t%s\n", e.Name, e.Price, e.Quantity, e.Subtotal)
	}
	fmt.Fprintf(tw, "Totale da pagare: %s\n", v.Total)
	return tw.Flush()
}
