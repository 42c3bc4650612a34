package removeitem

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
	Remove(ctx context.Context, userID uuid.UUID, productID int64, size string) (*cartsvc.CartView, error)
}

type removeItemRequest struct {
	ProductID int64  `json:"productId"`
	Size      string `json:"size"`
}

// RemoveItem deletes one cart line by its composite key.
func RemoveItem(w http.ResponseWriter, r *http.Request, service service) {
	var req removeItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		slog.Error("Error decoding request body for remove item", "error", err)

		return
	}

	userID := identity.FromContext(r.Context())

	view, err := service.Remove(r.Context(), userID, req.ProductID, req.Size)
	if err != nil {
		httperr.WriteCartError(w, err)
		slog.Error("Error removing cart item", "user_id", userID, "error", err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, view)
}
