package http

import (
	"github.com/shopspring/decimal"

	"github.com/utafrali/minicart/internal/domain"
)

func catalogItem(name, price string) domain.CatalogItem {
	return domain.CatalogItem{Name: name, Price: decimal.RequireFromString(price)}
}
