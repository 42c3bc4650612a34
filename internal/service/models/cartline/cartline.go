package cartline

import (
	"github.com/evoshop/storefront/internal/service/models/product"
	"github.com/google/uuid"
)

// Key is the composite identity of a cart line. A user may hold the same
// product in several sizes; each (product, size) pair is its own line.
type Key struct {
	ProductID int64  `json:"productId"`
	Size      string `json:"size"`
}

// CartLine is one entry in a user's cart together with its product snapshot.
type CartLine struct {
	UserID    uuid.UUID       `json:"userId"`
	ProductID int64           `json:"productId"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	Product   product.Product `json:"product"`
}

// Key returns the composite key identifying this line within the cart.
func (l CartLine) Key() Key {
	return Key{ProductID: l.ProductID, Size: l.Size}
}
