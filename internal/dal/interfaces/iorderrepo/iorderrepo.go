package iorderrepo

import (
	"context"

	"github.com/evoshop/storefront/internal/service/models/order"
)

// IOrderRepository is an interface for order postgres repository.
type IOrderRepository interface {
	Insert(ctx context.Context, o *order.Order) error
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
}
