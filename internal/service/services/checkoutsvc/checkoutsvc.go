package checkoutsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/evoshop/storefront/internal/dal/interfaces/icartitemrepo"
	"github.com/evoshop/storefront/internal/dal/interfaces/iorderitemrepo"
	"github.com/evoshop/storefront/internal/dal/interfaces/iorderrepo"
	"github.com/evoshop/storefront/internal/dal/interfaces/ioutboxrepo"
	"github.com/evoshop/storefront/internal/service/models/cartline"
	"github.com/evoshop/storefront/internal/service/models/currency"
	"github.com/evoshop/storefront/internal/service/models/order"
	"github.com/evoshop/storefront/internal/service/models/orderitem"
	"github.com/evoshop/storefront/internal/service/models/outbox"
	"github.com/google/uuid"
)

const orderPlacedRoutingKey = "order.placed"

// CheckoutService places orders as a three-step saga over a store that has
// no cross-entity transactions: create the order row, insert its lines,
// then delete the transacted cart rows. Each step is an independent write
// with its own failure policy.
type CheckoutService struct {
	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
	cartRepo      icartitemrepo.ICartItemRepository
	outboxRepo    ioutboxrepo.IOutboxRepository
	exchangeName  string

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

// Receipt is handed back on successful placement. CleanupIncomplete reports
// cart rows the saga could not delete; the order itself is durable.
type Receipt struct {
	OrderID           uuid.UUID      `json:"orderId"`
	LineCount         int            `json:"lineCount"`
	CleanupIncomplete bool           `json:"cleanupIncomplete"`
	UndeletedLines    []cartline.Key `json:"undeletedLines,omitempty"`
}

// orderPlacedEvent is the outbox payload published after a successful run.
type orderPlacedEvent struct {
	OrderID    uuid.UUID `json:"orderId"`
	UserID     uuid.UUID `json:"userId"`
	LineCount  int       `json:"lineCount"`
	TotalCents int64     `json:"totalCents"`
	PlacedAt   time.Time `json:"placedAt"`
}

// option is a function that configures the CheckoutService.
type option func(*CheckoutService)

// MustNewCheckoutService creates a new CheckoutService.
func MustNewCheckoutService(opts ...option) *CheckoutService {
	s := &CheckoutService{
		inFlight: make(map[uuid.UUID]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithOrderRepository sets the order repository for the CheckoutService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderRepository(repo iorderrepo.IOrderRepository) option {
	return func(s *CheckoutService) {
		s.orderRepo = repo
	}
}

// WithOrderItemRepository sets the order item repository for the CheckoutService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderItemRepository(repo iorderitemrepo.IOrderItemRepository) option {
	return func(s *CheckoutService) {
		s.orderItemRepo = repo
	}
}

// WithCartItemRepository sets the cart item repository for the CheckoutService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCartItemRepository(repo icartitemrepo.ICartItemRepository) option {
	return func(s *CheckoutService) {
		s.cartRepo = repo
	}
}

// WithOutboxRepository sets the outbox repository used to publish
// order.placed events.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOutboxRepository(repo ioutboxrepo.IOutboxRepository, exchangeName string) option {
	return func(s *CheckoutService) {
		s.outboxRepo = repo
		s.exchangeName = exchangeName
	}
}

// Place runs the placement saga for the selected cart lines.
//
// Step 1 failure aborts with no partial state. Step 2 failure leaves an
// orphaned order row and aborts. Step 3 failures never fail the placement:
// every delete is attempted, leftovers are reported on the receipt and the
// affected lines stay in the cart until the next removal or re-checkout.
func (s *CheckoutService) Place(
	ctx context.Context,
	userID uuid.UUID,
	selection []cartline.CartLine,
	totalCents int64,
	shippingAddress string,
	paymentMethod string,
) (*Receipt, error) {
	if len(selection) == 0 {
		return nil, ErrEmptySelection
	}

	if !s.acquire(userID) {
		return nil, ErrCheckoutInFlight
	}
	defer s.release(userID)

	o := &order.Order{
		ID:              uuid.New(),
		UserID:          userID,
		TotalCents:      totalCents,
		TotalCurrency:   currency.CurrencyPHP,
		ShippingAddress: shippingAddress,
		PaymentMethod:   paymentMethod,
		Status:          order.StatusPending,
		CreatedAt:       time.Now(),
	}

	// Step 1: create the order row.
	if err := s.orderRepo.Insert(ctx, o); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderCreateFailed, err)
	}

	// Step 2: insert one line per selected cart line, freezing the price
	// from the product snapshot taken at call time.
	items := make([]orderitem.OrderItem, 0, len(selection))
	for _, line := range selection {
		items = append(items, orderitem.OrderItem{
			OrderID:              o.ID,
			ProductID:            line.ProductID,
			Quantity:             line.Quantity,
			Size:                 line.Size,
			PriceAtPurchaseCents: line.Product.PriceCents,
			PriceCurrency:        line.Product.PriceCurrency,
		})
	}

	if _, err := s.orderItemRepo.BulkInsert(ctx, items); err != nil {
		slog.Error("Order left without lines, manual reconciliation needed",
			"order_id", o.ID, "user_id", userID, "error", err)

		return nil, fmt.Errorf("%w: %v", ErrOrderLinesFailed, err)
	}

	s.publishOrderPlaced(ctx, o, len(items))

	// Step 3: delete the transacted cart rows. All deletes are attempted;
	// failures are collected, not short-circuited.
	var undeleted []cartline.Key
	for _, line := range selection {
		if err := s.cartRepo.Delete(ctx, userID, line.ProductID, line.Size); err != nil {
			slog.Warn("Cart cleanup incomplete after placement",
				"order_id", o.ID, "user_id", userID,
				"product_id", line.ProductID, "size", line.Size, "error", err)
			undeleted = append(undeleted, line.Key())
		}
	}

	return &Receipt{
		OrderID:           o.ID,
		LineCount:         len(items),
		CleanupIncomplete: len(undeleted) > 0,
		UndeletedLines:    undeleted,
	}, nil
}

// History retrieves the identity's orders newest-first with their items.
func (s *CheckoutService) History(
	ctx context.Context,
	userID uuid.UUID,
	page int,
	pageSize int,
) ([]order.Order, error) {
	orderQuery := &order.QueryOrdersModel{
		UserIds: []uuid.UUID{userID},
		Limit:   pageSize,
	}
	if page > 1 {
		orderQuery.Offset = (page - 1) * pageSize
	}

	orders, err := s.orderRepo.Query(ctx, orderQuery)
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	itemQuery := &orderitem.QueryOrderItemsModel{}
	for _, o := range orders {
		itemQuery.OrderIds = append(itemQuery.OrderIds, o.ID)
	}
	items, err := s.orderItemRepo.Query(ctx, itemQuery)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		for _, item := range items {
			if item.OrderID == orders[i].ID {
				orders[i].OrderItems = append(orders[i].OrderItems, item)
			}
		}
	}

	return orders, nil
}

// publishOrderPlaced enqueues the order.placed event. Best effort: the
// outbox insert failing must not fail a placement the customer already paid
// for, so it is only logged.
func (s *CheckoutService) publishOrderPlaced(ctx context.Context, o *order.Order, lineCount int) {
	if s.outboxRepo == nil {
		return
	}

	payload, err := json.Marshal(orderPlacedEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		LineCount:  lineCount,
		TotalCents: o.TotalCents,
		PlacedAt:   o.CreatedAt,
	})
	if err != nil {
		slog.Error("Failed to marshal order placed event", "order_id", o.ID, "error", err)

		return
	}

	msg := outbox.NewJSONMessage(s.exchangeName, orderPlacedRoutingKey, payload)
	if err := s.outboxRepo.Insert(ctx, msg); err != nil {
		slog.Error("Failed to enqueue order placed event", "order_id", o.ID, "error", err)
	}
}

func (s *CheckoutService) acquire(userID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[userID]; busy {
		return false
	}
	s.inFlight[userID] = struct{}{}

	return true
}

func (s *CheckoutService) release(userID uuid.UUID) {
	s.mu.Lock()
	delete(s.inFlight, userID)
	s.mu.Unlock()
}
