package catalogsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/evoshop/storefront/internal/dal/cache"
	"github.com/evoshop/storefront/internal/dal/interfaces/iproductrepo"
	"github.com/evoshop/storefront/internal/service/models/product"
	"golang.org/x/sync/singleflight"
)

// CatalogService serves the read-only product browse path: a plain
// name/color predicate over the catalog, fronted by a TTL cache.
type CatalogService struct {
	productRepo iproductrepo.IProductRepository
	cache       cache.ProductCache
	sfg         singleflight.Group // Prevents cache stampede
}

// option is a function that configures the CatalogService.
type option func(*CatalogService)

// MustNewCatalogService creates a new CatalogService.
func MustNewCatalogService(opts ...option) *CatalogService {
	s := &CatalogService{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithProductRepository sets the product repository for the CatalogService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithProductRepository(repo iproductrepo.IProductRepository) option {
	return func(s *CatalogService) {
		s.productRepo = repo
	}
}

// WithProductCache sets the listing cache for the CatalogService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithProductCache(c cache.ProductCache) option {
	return func(s *CatalogService) {
		s.cache = c
	}
}

// ListProducts returns catalog products for the given filter, cache-aside.
// Cache failures fall through to the store; concurrent misses for the same
// filter are collapsed into one query.
func (s *CatalogService) ListProducts(
	ctx context.Context,
	filter *product.QueryProductsModel,
) ([]product.Product, error) {
	key := fmt.Sprintf("%s|%s|%d|%d", filter.Search, filter.Color, filter.Limit, filter.Offset)

	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		if s.cache != nil {
			products, err := s.cache.Get(ctx, filter)
			if err == nil {
				return products, nil
			}
			if !errors.Is(err, cache.ErrCacheMiss) {
				slog.Warn("Product cache get failed", "error", err)
			}
		}

		products, err := s.productRepo.List(ctx, filter)
		if err != nil {
			return nil, err
		}

		if s.cache != nil {
			if err := s.cache.Set(ctx, filter, products); err != nil {
				slog.Warn("Product cache set failed", "error", err)
			}
		}

		return products, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]product.Product), nil
}
