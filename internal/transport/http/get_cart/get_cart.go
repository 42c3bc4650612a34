package getcart

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/evoshop/storefront/internal/service/services/cartsvc"
	"github.com/evoshop/storefront/internal/transport/http/httperr"
	"github.com/evoshop/storefront/internal/transport/http/identity"
	"github.com/google/uuid"
)

// service is an interface for the service layer.
type service interface {
	Refresh(ctx context.Context, userID uuid.UUID) (*cartsvc.CartView, error)
}

// GetCart re-fetches the cart from the store and returns the reconciled view.
func GetCart(w http.ResponseWriter, r *http.Request, service service) {
	userID := identity.FromContext(r.Context())

	view, err := service.Refresh(r.Context(), userID)
	if err != nil {
		httperr.WriteCartError(w, err)
		slog.Error("Error refreshing cart", "user_id", userID, "error", err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, view)
}
