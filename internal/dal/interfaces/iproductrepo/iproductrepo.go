package iproductrepo

import (
	"context"

	"github.com/evoshop/storefront/internal/service/models/product"
)

// IProductRepository is an interface for product postgres repository.
type IProductRepository interface {
	List(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)
}
