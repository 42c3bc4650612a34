package cache

import (
	"context"
	"errors"

	"github.com/evoshop/storefront/internal/service/models/product"
)

// ProductCache caches catalog listings keyed by their filter.
type ProductCache interface {
	Get(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)
	Set(ctx context.Context, filter *product.QueryProductsModel, products []product.Product) error
}

var ErrCacheMiss = errors.New("cache miss")
