package checkoutsvc

import (
	"context"
	"sync"
	"time"

	"github.com/evoshop/storefront/internal/service/models/cartline"
	"github.com/evoshop/storefront/internal/service/models/order"
	"github.com/evoshop/storefront/internal/service/models/orderitem"
	"github.com/evoshop/storefront/internal/service/models/outbox"
	"github.com/google/uuid"
)

// mockOrderRepo implements iorderrepo.IOrderRepository for testing.
// InsertGate, when set, is received from inside Insert so tests can hold a
// placement in flight.
type mockOrderRepo struct {
	InsertErr error
	Inserted  []order.Order

	QueryOrders []order.Order
	QueryErr    error

	InsertGate chan struct{}
}

func (m *mockOrderRepo) Insert(_ context.Context, o *order.Order) error {
	if m.InsertGate != nil {
		<-m.InsertGate
	}
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.Inserted = append(m.Inserted, *o)

	return nil
}

func (m *mockOrderRepo) Query(_ context.Context, _ *order.QueryOrdersModel) ([]order.Order, error) {
	return m.QueryOrders, m.QueryErr
}

// mockOrderItemRepo implements iorderitemrepo.IOrderItemRepository for testing.
type mockOrderItemRepo struct {
	BulkErr  error
	Inserted []orderitem.OrderItem

	QueryItems []orderitem.OrderItem
	QueryErr   error
}

func (m *mockOrderItemRepo) BulkInsert(_ context.Context, orderItems []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	if m.BulkErr != nil {
		return nil, m.BulkErr
	}
	m.Inserted = append(m.Inserted, orderItems...)

	return orderItems, nil
}

func (m *mockOrderItemRepo) Query(_ context.Context, _ *orderitem.QueryOrderItemsModel) ([]orderitem.OrderItem, error) {
	return m.QueryItems, m.QueryErr
}

// mockCartItemRepo implements the slice of icartitemrepo the saga touches:
// per-key deletes. DeleteErrs injects a failure for specific keys.
type mockCartItemRepo struct {
	mu         sync.Mutex
	DeleteErrs map[cartline.Key]error
	Deleted    []cartline.Key
}

func (m *mockCartItemRepo) Upsert(_ context.Context, _ uuid.UUID, _ int64, _ string, _ int) error {
	return nil
}

func (m *mockCartItemRepo) UpdateQuantity(_ context.Context, _ uuid.UUID, _ int64, _ string, _ int) error {
	return nil
}

func (m *mockCartItemRepo) Delete(_ context.Context, _ uuid.UUID, productID int64, size string) error {
	key := cartline.Key{ProductID: productID, Size: size}
	if err := m.DeleteErrs[key]; err != nil {
		return err
	}

	m.mu.Lock()
	m.Deleted = append(m.Deleted, key)
	m.mu.Unlock()

	return nil
}

func (m *mockCartItemRepo) ListByUser(_ context.Context, _ uuid.UUID) ([]cartline.CartLine, error) {
	return nil, nil
}

// mockOutboxRepo implements ioutboxrepo.IOutboxRepository for testing.
type mockOutboxRepo struct {
	InsertErr error
	Messages  []outbox.OutboxMessage
}

func (m *mockOutboxRepo) Insert(_ context.Context, msg outbox.OutboxMessage) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.Messages = append(m.Messages, msg)

	return nil
}

func (m *mockOutboxRepo) GetPendingMessages(_ context.Context, _ int) ([]outbox.OutboxMessage, error) {
	return nil, nil
}

func (m *mockOutboxRepo) Delete(_ context.Context, _ int64) error {
	return nil
}

func (m *mockOutboxRepo) UpdateRetry(_ context.Context, _ int64, _ int, _ string, _ time.Time) error {
	return nil
}

// newTestCheckoutService wires a CheckoutService onto the given mocks.
func newTestCheckoutService(
	orders *mockOrderRepo,
	items *mockOrderItemRepo,
	cart *mockCartItemRepo,
	box *mockOutboxRepo,
) *CheckoutService {
	opts := []option{
		WithOrderRepository(orders),
		WithOrderItemRepository(items),
		WithCartItemRepository(cart),
	}
	if box != nil {
		opts = append(opts, WithOutboxRepository(box, "storefront.orders"))
	}

	return MustNewCheckoutService(opts...)
}
