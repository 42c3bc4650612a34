package listproducts

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/evoshop/storefront/internal/service/models/product"
	"github.com/evoshop/storefront/internal/transport/http/httperr"
	"github.com/gorilla/schema"
)

// service is an interface for the service layer.
type service interface {
	ListProducts(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)
}

type listProductsRequest struct {
	Search string `schema:"search,omitempty"`
	Color  string `schema:"color,omitempty"`
	Limit  int    `schema:"limit,omitempty"`
	Offset int    `schema:"offset,omitempty"`
}

// ListProducts returns catalog products matching the filter.
func ListProducts(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &listProductsRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request", "error", err)

		return
	}

	products, err := service.ListProducts(r.Context(), &product.QueryProductsModel{
		Search: query.Search,
		Color:  query.Color,
		Limit:  query.Limit,
		Offset: query.Offset,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error listing products", "error", err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, products)
}
