package updatequantity

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
	SetQuantity(ctx context.Context, userID uuid.UUID, productID int64, size string, quantity int) (*cartsvc.CartView, error)
}

type updateQuantityRequest struct {
	ProductID int64  `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// UpdateQuantity sets the quantity of one cart line. Zero or negative
// removes the line.
func UpdateQuantity(w http.ResponseWriter, r *http.Request, service service) {
	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		slog.Error("Error decoding request body for update quantity", "error", err)

		return
	}

	userID := identity.FromContext(r.Context())

	view, err := service.SetQuantity(r.Context(), userID, req.ProductID, req.Size, req.Quantity)
	if err != nil {
		httperr.WriteCartError(w, err)
		slog.Error("Error updating cart item quantity", "user_id", userID, "error", err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, view)
}
