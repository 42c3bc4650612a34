package cartsvc

import (
	"context"
	"sync"

	"github.com/evoshop/storefront/internal/service/models/cartline"
	"github.com/google/uuid"
)

// mockCartItemRepo implements icartitemrepo.ICartItemRepository for testing.
// Lines is returned by ListByUser; ListGate, when set, is received from
// before returning so tests can interleave in-flight refreshes.
type mockCartItemRepo struct {
	mu    sync.Mutex
	Lines []cartline.CartLine

	ListErr   error
	UpsertErr error
	UpdateErr error
	DeleteErr error

	ListGate chan struct{}

	ListCalls   int
	UpsertCalls []cartline.Key
	UpdateCalls []cartline.Key
	DeleteCalls []cartline.Key
}

func (m *mockCartItemRepo) Upsert(_ context.Context, _ uuid.UUID, productID int64, size string, _ int) error {
	m.mu.Lock()
	m.UpsertCalls = append(m.UpsertCalls, cartline.Key{ProductID: productID, Size: size})
	m.mu.Unlock()

	return m.UpsertErr
}

func (m *mockCartItemRepo) UpdateQuantity(_ context.Context, _ uuid.UUID, productID int64, size string, _ int) error {
	m.mu.Lock()
	m.UpdateCalls = append(m.UpdateCalls, cartline.Key{ProductID: productID, Size: size})
	m.mu.Unlock()

	return m.UpdateErr
}

func (m *mockCartItemRepo) Delete(_ context.Context, _ uuid.UUID, productID int64, size string) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, cartline.Key{ProductID: productID, Size: size})
	m.mu.Unlock()

	return m.DeleteErr
}

func (m *mockCartItemRepo) ListByUser(_ context.Context, _ uuid.UUID) ([]cartline.CartLine, error) {
	m.mu.Lock()
	m.ListCalls++
	gate := m.ListGate
	lines := make([]cartline.CartLine, len(m.Lines))
	copy(lines, m.Lines)
	err := m.ListErr
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}

	if err != nil {
		return nil, err
	}

	return lines, nil
}

func (m *mockCartItemRepo) setLines(lines []cartline.CartLine) {
	m.mu.Lock()
	m.Lines = lines
	m.mu.Unlock()
}

func line(userID uuid.UUID, productID int64, size string, quantity int) cartline.CartLine {
	return cartline.CartLine{
		UserID:    userID,
		ProductID: productID,
		Size:      size,
		Quantity:  quantity,
	}
}
