package selectall

import (
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
	SelectAll(userID uuid.UUID, flag bool) (*cartsvc.CartView, error)
}

type selectAllRequest struct {
	Selected bool `json:"selected"`
}

// SelectAll selects or deselects every cart line for checkout.
func SelectAll(w http.ResponseWriter, r *http.Request, service service) {
	var req selectAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		slog.Error("Error decoding request body for select all", "error", err)

		return
	}

	userID := identity.FromContext(r.Context())

	view, err := service.SelectAll(userID, req.Selected)
	if err != nil {
		httperr.WriteCartError(w, err)
		slog.Error("Error setting select all", "user_id", userID, "error", err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, view)
}
