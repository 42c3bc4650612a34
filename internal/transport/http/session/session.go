package session

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
	StartSession(ctx context.Context, userID uuid.UUID) (*cartsvc.CartView, error)
	EndSession(userID uuid.UUID)
}

// Start is the sign-in webhook from the auth collaborator: it opens the
// identity's session and loads the cart.
func Start(w http.ResponseWriter, r *http.Request, service service) {
	userID := identity.FromContext(r.Context())

	view, err := service.StartSession(r.Context(), userID)
	if err != nil {
		httperr.WriteCartError(w, err)
		slog.Error("Error starting session", "user_id", userID, "error", err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, view)
}

// End is the sign-out webhook: it tears down the identity's session,
// dropping the local cart and selection.
func End(w http.ResponseWriter, r *http.Request, service service) {
	userID := identity.FromContext(r.Context())

	service.EndSession(userID)

	w.WriteHeader(http.StatusNoContent)
}
