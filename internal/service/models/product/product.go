package product

import (
	"github.com/evoshop/storefront/internal/service/models/currency"
)

// Product is the catalog snapshot denormalized onto cart lines and order items.
// This service never mutates products; they are read through a join.
type Product struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	PriceCents    int64             `json:"priceCents"`
	PriceCurrency currency.Currency `json:"priceCurrency"`
	Color         string            `json:"color"`
	ImagePath     string            `json:"imagePath"`
}

// QueryProductsModel filters the catalog listing.
type QueryProductsModel struct {
	Search string
	Color  string
	Limit  int
	Offset int
}
