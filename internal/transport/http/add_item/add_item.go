package additem

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/evoshop/storefront/internal/service/services/cartsvc"
	"github.com/evoshop/storefront/internal/transport/http/httperr"
	"github.com/evoshop/storefront/internal/transport/http/identity"
	"github.com/google/uuid"
)

// service is an interface for the service layer.
type service interface {
	AddOrIncrement(ctx context.Context, userID uuid.UUID, productID int64, size string, delta int) (*cartsvc.CartView, error)
}

type addItemRequest struct {
	ProductID int64  `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// AddItem adds a product in a given size to the cart, merging into an
// existing line when one exists.
func AddItem(w http.ResponseWriter, r *http.Request, service service) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		slog.Error("Error decoding request body for add item", "error", err)

		return
	}

	if req.Quantity == 0 {
		req.Quantity = 1
	}

	userID := identity.FromContext(r.Context())

	view, err := service.AddOrIncrement(r.Context(), userID, req.ProductID, req.Size, req.Quantity)
	if err != nil {
		httperr.WriteCartError(w, err)
		slog.Error("Error adding cart item", "user_id", userID, "error", err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, view)
}
