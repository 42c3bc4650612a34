package checkoutsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evoshop/storefront/internal/service/models/cartline"
	"github.com/evoshop/storefront/internal/service/models/currency"
	"github.com/evoshop/storefront/internal/service/models/order"
	"github.com/evoshop/storefront/internal/service/models/orderitem"
	"github.com/evoshop/storefront/internal/service/models/product"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selectedLines(userID uuid.UUID) []cartline.CartLine {
	return []cartline.CartLine{
		{
			UserID:    userID,
			ProductID: 1,
			Size:      "M",
			Quantity:  2,
			Product: product.Product{
				ID:            1,
				Name:          "Linen Shirt",
				PriceCents:    149900,
				PriceCurrency: currency.CurrencyPHP,
			},
		},
		{
			UserID:    userID,
			ProductID: 4,
			Size:      "L",
			Quantity:  1,
			Product: product.Product{
				ID:            4,
				Name:          "Denim Jacket",
				PriceCents:    299900,
				PriceCurrency: currency.CurrencyPHP,
			},
		},
	}
}

func TestPlace_Success(t *testing.T) {
	userID := uuid.New()
	orders := &mockOrderRepo{}
	items := &mockOrderItemRepo{}
	cart := &mockCartItemRepo{}
	box := &mockOutboxRepo{}
	svc := newTestCheckoutService(orders, items, cart, box)

	receipt, err := svc.Place(context.Background(), userID, selectedLines(userID), 599700, "123 Mabini St", "cod")

	require.NoError(t, err)
	require.Len(t, orders.Inserted, 1)
	placed := orders.Inserted[0]
	assert.Equal(t, userID, placed.UserID)
	assert.Equal(t, int64(599700), placed.TotalCents)
	assert.Equal(t, order.StatusPending, placed.Status)

	require.Len(t, items.Inserted, 2)
	assert.Equal(t, placed.ID, items.Inserted[0].OrderID)
	assert.Equal(t, int64(149900), items.Inserted[0].PriceAtPurchaseCents)
	assert.Equal(t, int64(299900), items.Inserted[1].PriceAtPurchaseCents)

	assert.ElementsMatch(t, []cartline.Key{
		{ProductID: 1, Size: "M"},
		{ProductID: 4, Size: "L"},
	}, cart.Deleted)

	assert.Equal(t, placed.ID, receipt.OrderID)
	assert.Equal(t, 2, receipt.LineCount)
	assert.False(t, receipt.CleanupIncomplete)
	assert.Empty(t, receipt.UndeletedLines)

	require.Len(t, box.Messages, 1)
	assert.Equal(t, "order.placed", box.Messages[0].RoutingKey)
	assert.Equal(t, "storefront.orders", box.Messages[0].ExchangeName)
}

func TestPlace_EmptySelection(t *testing.T) {
	orders := &mockOrderRepo{}
	svc := newTestCheckoutService(orders, &mockOrderItemRepo{}, &mockCartItemRepo{}, nil)

	_, err := svc.Place(context.Background(), uuid.New(), nil, 0, "123 Mabini St", "cod")

	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.Empty(t, orders.Inserted)
}

func TestPlace_OrderInsertFails(t *testing.T) {
	userID := uuid.New()
	orders := &mockOrderRepo{InsertErr: errors.New("connection refused")}
	items := &mockOrderItemRepo{}
	cart := &mockCartItemRepo{}
	svc := newTestCheckoutService(orders, items, cart, nil)

	_, err := svc.Place(context.Background(), userID, selectedLines(userID), 599700, "123 Mabini St", "cod")

	assert.ErrorIs(t, err, ErrOrderCreateFailed)
	assert.Empty(t, items.Inserted)
	assert.Empty(t, cart.Deleted)
}

func TestPlace_OrderLinesFail(t *testing.T) {
	userID := uuid.New()
	orders := &mockOrderRepo{}
	items := &mockOrderItemRepo{BulkErr: errors.New("connection refused")}
	cart := &mockCartItemRepo{}
	box := &mockOutboxRepo{}
	svc := newTestCheckoutService(orders, items, cart, box)

	_, err := svc.Place(context.Background(), userID, selectedLines(userID), 599700, "123 Mabini St", "cod")

	assert.ErrorIs(t, err, ErrOrderLinesFailed)
	// The orphaned order row stays; the cart must not be touched and no
	// event may go out.
	assert.Len(t, orders.Inserted, 1)
	assert.Empty(t, cart.Deleted)
	assert.Empty(t, box.Messages)
}

func TestPlace_CleanupIncomplete(t *testing.T) {
	userID := uuid.New()
	orders := &mockOrderRepo{}
	items := &mockOrderItemRepo{}
	stuck := cartline.Key{ProductID: 1, Size: "M"}
	cart := &mockCartItemRepo{DeleteErrs: map[cartline.Key]error{
		stuck: errors.New("connection refused"),
	}}
	svc := newTestCheckoutService(orders, items, cart, nil)

	receipt, err := svc.Place(context.Background(), userID, selectedLines(userID), 599700, "123 Mabini St", "cod")

	// The order is durable even though cleanup fell short.
	require.NoError(t, err)
	assert.True(t, receipt.CleanupIncomplete)
	assert.Equal(t, []cartline.Key{stuck}, receipt.UndeletedLines)
	// The other delete was still attempted.
	assert.Equal(t, []cartline.Key{{ProductID: 4, Size: "L"}}, cart.Deleted)
}

func TestPlace_SecondCheckoutWhileInFlight(t *testing.T) {
	userID := uuid.New()
	gate := make(chan struct{})
	orders := &mockOrderRepo{InsertGate: gate}
	svc := newTestCheckoutService(orders, &mockOrderItemRepo{}, &mockCartItemRepo{}, nil)

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.Place(context.Background(), userID, selectedLines(userID), 599700, "123 Mabini St", "cod")
		firstDone <- err
	}()

	require.Eventually(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		_, busy := svc.inFlight[userID]

		return busy
	}, time.Second, time.Millisecond)

	_, err := svc.Place(context.Background(), userID, selectedLines(userID), 599700, "123 Mabini St", "cod")
	assert.ErrorIs(t, err, ErrCheckoutInFlight)

	close(gate)
	require.NoError(t, <-firstDone)

	// Once released, the identity can place again.
	receipt, err := svc.Place(context.Background(), userID, selectedLines(userID), 599700, "123 Mabini St", "cod")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, receipt.OrderID)
}

func TestPlace_OutboxFailureDoesNotFailPlacement(t *testing.T) {
	userID := uuid.New()
	box := &mockOutboxRepo{InsertErr: errors.New("connection refused")}
	svc := newTestCheckoutService(&mockOrderRepo{}, &mockOrderItemRepo{}, &mockCartItemRepo{}, box)

	receipt, err := svc.Place(context.Background(), userID, selectedLines(userID), 599700, "123 Mabini St", "cod")

	require.NoError(t, err)
	assert.False(t, receipt.CleanupIncomplete)
}

func TestHistory_JoinsItemsToOrders(t *testing.T) {
	userID := uuid.New()
	first := uuid.New()
	second := uuid.New()
	orders := &mockOrderRepo{QueryOrders: []order.Order{
		{ID: first, UserID: userID},
		{ID: second, UserID: userID},
	}}
	items := &mockOrderItemRepo{QueryItems: []orderitem.OrderItem{
		{ID: 1, OrderID: first, ProductID: 1},
		{ID: 2, OrderID: second, ProductID: 4},
		{ID: 3, OrderID: first, ProductID: 9},
	}}
	svc := newTestCheckoutService(orders, items, &mockCartItemRepo{}, nil)

	got, err := svc.History(context.Background(), userID, 1, 20)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Len(t, got[0].OrderItems, 2)
	assert.Len(t, got[1].OrderItems, 1)
}

func TestHistory_Empty(t *testing.T) {
	svc := newTestCheckoutService(&mockOrderRepo{}, &mockOrderItemRepo{}, &mockCartItemRepo{}, nil)

	got, err := svc.History(context.Background(), uuid.New(), 1, 20)

	require.NoError(t, err)
	assert.Empty(t, got)
}
