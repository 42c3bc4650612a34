package icartitemrepo

import (
	"context"

	"github.com/evoshop/storefront/internal/service/models/cartline"
	"github.com/google/uuid"
)

// ICartItemRepository is an interface for cart item postgres repository.
type ICartItemRepository interface {
	Upsert(ctx context.Context, userID uuid.UUID, productID int64, size string, delta int) error
	UpdateQuantity(ctx context.Context, userID uuid.UUID, productID int64, size string, quantity int) error
	Delete(ctx context.Context, userID uuid.UUID, productID int64, size string) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]cartline.CartLine, error)
}
