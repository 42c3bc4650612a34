package orderitem

import "github.com/google/uuid"

// QueryOrderItemsModel represents filter parameters for querying order items.
type QueryOrderItemsModel struct {
	Ids      []int64     `json:"ids,omitempty"`
	OrderIds []uuid.UUID `json:"orderIds,omitempty"`
}
