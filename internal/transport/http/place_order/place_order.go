package placeorder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/evoshop/storefront/internal/service/models/cartline"
	"github.com/evoshop/storefront/internal/service/services/cartsvc"
	"github.com/evoshop/storefront/internal/service/services/checkoutsvc"
	"github.com/evoshop/storefront/internal/transport/http/httperr"
	"github.com/evoshop/storefront/internal/transport/http/identity"
	"github.com/google/uuid"
)

// cartService exposes the selection feeding the saga and the resync
// afterwards.
type cartService interface {
	Selection(userID uuid.UUID) ([]cartline.CartLine, error)
	Refresh(ctx context.Context, userID uuid.UUID) (*cartsvc.CartView, error)
}

// checkoutService is an interface for the service layer.
type checkoutService interface {
	Place(
		ctx context.Context,
		userID uuid.UUID,
		selection []cartline.CartLine,
		totalCents int64,
		shippingAddress string,
		paymentMethod string,
	) (*checkoutsvc.Receipt, error)
}

type placeOrderRequest struct {
	TotalCents      int64  `json:"totalCents"`
	ShippingAddress string `json:"shippingAddress"`
	PaymentMethod   string `json:"paymentMethod"`
}

type placeOrderResponse struct {
	Receipt *checkoutsvc.Receipt `json:"receipt"`
	Cart    *cartsvc.CartView    `json:"cart,omitempty"`
	Warning string               `json:"warning,omitempty"`
}

// PlaceOrder runs the placement saga over the currently selected cart lines
// and resynchronizes the cart afterwards. The response always makes clear
// whether nothing happened, the order was placed cleanly, or it was placed
// with a cleanup warning.
func PlaceOrder(w http.ResponseWriter, r *http.Request, carts cartService, checkouts checkoutService) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		slog.Error("Error decoding request body for place order", "error", err)

		return
	}

	if req.ShippingAddress == "" {
		http.Error(w, "shipping address is required", http.StatusBadRequest)

		return
	}

	userID := identity.FromContext(r.Context())

	selection, err := carts.Selection(userID)
	if err != nil {
		httperr.WriteCartError(w, err)
		slog.Error("Error reading selection for place order", "user_id", userID, "error", err)

		return
	}

	receipt, err := checkouts.Place(r.Context(), userID, selection, req.TotalCents, req.ShippingAddress, req.PaymentMethod)
	if err != nil {
		writePlaceError(w, err)
		slog.Error("Error placing order", "user_id", userID, "error", err)

		return
	}

	resp := placeOrderResponse{Receipt: receipt}
	if receipt.CleanupIncomplete {
		resp.Warning = "order placed, but some purchased lines could not be removed from the cart"
	}

	// The order is durable at this point; a failed resync only degrades the
	// returned view, never the placement.
	view, err := carts.Refresh(r.Context(), userID)
	if err != nil {
		slog.Warn("Cart resync after placement failed", "user_id", userID, "error", err)
	} else {
		resp.Cart = view
	}

	httperr.WriteJSON(w, http.StatusCreated, resp)
}

// writePlaceError distinguishes "nothing happened" failures from partial
// ones so the caller can message the user accurately.
func writePlaceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkoutsvc.ErrEmptySelection):
		http.Error(w, "no items selected, nothing was ordered", http.StatusUnprocessableEntity)
	case errors.Is(err, checkoutsvc.ErrCheckoutInFlight):
		http.Error(w, "an order is already being placed, nothing was ordered", http.StatusConflict)
	case errors.Is(err, checkoutsvc.ErrOrderCreateFailed):
		http.Error(w, "order could not be created, nothing was ordered", http.StatusBadGateway)
	case errors.Is(err, checkoutsvc.ErrOrderLinesFailed):
		http.Error(w, "order lines could not be saved, the order needs manual review", http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
