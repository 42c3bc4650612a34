package listorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/evoshop/storefront/internal/service/models/order"
	"github.com/evoshop/storefront/internal/transport/http/httperr"
	"github.com/evoshop/storefront/internal/transport/http/identity"
	"github.com/google/uuid"
	"github.com/gorilla/schema"
)

// service is an interface for the service layer.
type service interface {
	History(ctx context.Context, userID uuid.UUID, page int, pageSize int) ([]order.Order, error)
}

type listOrdersRequest struct {
	Page     int `schema:"page,omitempty"`
	PageSize int `schema:"pageSize,omitempty"`
}

// ListOrders returns the identity's past orders, newest first.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &listOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request", "error", err)

		return
	}

	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 {
		query.PageSize = 20
	}

	userID := identity.FromContext(r.Context())

	orders, err := service.History(r.Context(), userID, query.Page, query.PageSize)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error getting orders", "user_id", userID, "error", err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, orders)
}
