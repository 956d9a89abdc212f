package render

import "github.com/shopspring/decimal"

// DefaultCurrencySymbol is used when no symbol is configured.
const DefaultCurrencySymbol = "€"

// Formatter turns amounts into display strings with exactly two decimals.
type Formatter struct {
	symbol string
}

// NewFormatter returns a formatter prefixing amounts with symbol.
func NewFormatter(symbol string) Formatter {
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}
	return Formatter{symbol: symbol}
}

// Symbol returns the currency symbol.
func (f Formatter) Symbol() string {
	return f.symbol
}

// FormatPrice renders d as e.g. "€2.20". Half-way values round away from zero.
func (f Formatter) FormatPrice(d decimal.Decimal) string {
	return f.symbol + d.StringFixed(2)
}
