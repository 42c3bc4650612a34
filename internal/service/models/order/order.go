package order

import (
	"time"

	"github.com/evoshop/storefront/internal/service/models/currency"
	"github.com/evoshop/storefront/internal/service/models/orderitem"
	"github.com/google/uuid"
)

// Status of an order. This service only ever creates Pending orders;
// later transitions belong to fulfillment.
type Status string

const (
	StatusPending Status = "Pending"
)

// Order represents a placed order in the system.
type Order struct {
	ID              uuid.UUID             `json:"id"`
	UserID          uuid.UUID             `json:"userId"`
	TotalCents      int64                 `json:"totalCents"`
	TotalCurrency   currency.Currency     `json:"totalCurrency"`
	ShippingAddress string                `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
	Status          Status                `json:"status"`
	CreatedAt       time.Time             `json:"createdAt"`
	OrderItems      []orderitem.OrderItem `json:"orderItems"`
}
