package toggleselection

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/evoshop/storefront/internal/service/models/cartline"
	"github.com/evoshop/storefront/internal/service/services/cartsvc"
	"github.com/evoshop/storefront/internal/transport/http/httperr"
	"github.com/evoshop/storefront/internal/transport/http/identity"
	"github.com/google/uuid"
)

// service is an interface for the service layer.
type service interface {
	ToggleSelection(userID uuid.UUID, key cartline.Key) (*cartsvc.CartView, error)
}

type toggleSelectionRequest struct {
	ProductID int64  `json:"productId"`
	Size      string `json:"size"`
}

// ToggleSelection flips checkout membership of one cart line.
func ToggleSelection(w http.ResponseWriter, r *http.Request, service service) {
	var req toggleSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		slog.Error("Error decoding request body for toggle selection", "error", err)

		return
	}

	userID := identity.FromContext(r.Context())

	view, err := service.ToggleSelection(userID, cartline.Key{ProductID: req.ProductID, Size: req.Size})
	if err != nil {
		httperr.WriteCartError(w, err)
		slog.Error("Error toggling selection", "user_id", userID, "error", err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, view)
}
