package orderitem

import (
	"github.com/evoshop/storefront/internal/service/models/currency"
	"github.com/google/uuid"
)

// OrderItem represents one transacted cart line within an order.
// PriceAtPurchase is frozen at placement time and is the authoritative audit
// record even if the product's price changes later.
type OrderItem struct {
	ID                   int64             `json:"id"`
	OrderID              uuid.UUID         `json:"orderId"`
	ProductID            int64             `json:"productId"`
	Quantity             int               `json:"quantity"`
	Size                 string            `json:"size"`
	PriceAtPurchaseCents int64             `json:"priceAtPurchaseCents"`
	PriceCurrency        currency.Currency `json:"priceCurrency"`
}
