package cartsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evoshop/storefront/internal/service/models/cartline"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSession_LoadsCart(t *testing.T) {
	userID := uuid.New()
	repo := &mockCartItemRepo{Lines: []cartline.CartLine{
		line(userID, 1, "M", 2),
		line(userID, 1, "L", 1),
	}}
	svc := MustNewCartService(WithCartItemRepository(repo))

	view, err := svc.StartSession(context.Background(), userID)

	require.NoError(t, err)
	assert.Len(t, view.Lines, 2)
	assert.Empty(t, view.Selected)
	assert.Equal(t, 1, repo.ListCalls)
}

func TestRefresh_NoSession(t *testing.T) {
	svc := MustNewCartService(WithCartItemRepository(&mockCartItemRepo{}))

	_, err := svc.Refresh(context.Background(), uuid.New())

	assert.ErrorIs(t, err, ErrNoSession)
}

func TestAddOrIncrement_UpsertsAndRefreshes(t *testing.T) {
	userID := uuid.New()
	repo := &mockCartItemRepo{}
	svc := MustNewCartService(WithCartItemRepository(repo))

	_, err := svc.StartSession(context.Background(), userID)
	require.NoError(t, err)

	repo.setLines([]cartline.CartLine{line(userID, 7, "S", 1)})

	view, err := svc.AddOrIncrement(context.Background(), userID, 7, "S", 1)

	require.NoError(t, err)
	assert.Equal(t, []cartline.Key{{ProductID: 7, Size: "S"}}, repo.UpsertCalls)
	assert.Len(t, view.Lines, 1)
}

func TestAddOrIncrement_InvalidDelta(t *testing.T) {
	userID := uuid.New()
	repo := &mockCartItemRepo{}
	svc := MustNewCartService(WithCartItemRepository(repo))

	_, err := svc.StartSession(context.Background(), userID)
	require.NoError(t, err)

	_, err = svc.AddOrIncrement(context.Background(), userID, 7, "S", 0)

	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Empty(t, repo.UpsertCalls)
}

func TestSetQuantity_NonPositiveRemovesLine(t *testing.T) {
	userID := uuid.New()
	repo := &mockCartItemRepo{Lines: []cartline.CartLine{line(userID, 7, "S", 3)}}
	svc := MustNewCartService(WithCartItemRepository(repo))

	_, err := svc.StartSession(context.Background(), userID)
	require.NoError(t, err)

	repo.setLines(nil)

	_, err = svc.SetQuantity(context.Background(), userID, 7, "S", 0)

	require.NoError(t, err)
	assert.Empty(t, repo.UpdateCalls)
	assert.Equal(t, []cartline.Key{{ProductID: 7, Size: "S"}}, repo.DeleteCalls)
}

func TestRemove_ScopedToCompositeKey(t *testing.T) {
	userID := uuid.New()
	repo := &mockCartItemRepo{Lines: []cartline.CartLine{
		line(userID, 7, "S", 1),
		line(userID, 7, "M", 1),
	}}
	svc := MustNewCartService(WithCartItemRepository(repo))

	_, err := svc.StartSession(context.Background(), userID)
	require.NoError(t, err)

	repo.setLines([]cartline.CartLine{line(userID, 7, "M", 1)})

	view, err := svc.Remove(context.Background(), userID, 7, "S")

	require.NoError(t, err)
	assert.Equal(t, []cartline.Key{{ProductID: 7, Size: "S"}}, repo.DeleteCalls)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "M", view.Lines[0].Size)
}

func TestRefresh_DroppedLineLeavesSelectionIntact(t *testing.T) {
	userID := uuid.New()
	a := line(userID, 1, "S", 1)
	b := line(userID, 2, "S", 1)
	c := line(userID, 3, "S", 1)
	repo := &mockCartItemRepo{Lines: []cartline.CartLine{a, b, c}}
	svc := MustNewCartService(WithCartItemRepository(repo))

	_, err := svc.StartSession(context.Background(), userID)
	require.NoError(t, err)

	_, err = svc.ToggleSelection(userID, a.Key())
	require.NoError(t, err)
	_, err = svc.ToggleSelection(userID, b.Key())
	require.NoError(t, err)

	// b vanishes remotely; a stays selected, c stays unselected.
	repo.setLines([]cartline.CartLine{a, c})

	view, err := svc.Refresh(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, []cartline.Key{a.Key()}, view.Selected)
}

func TestSelectAll_StickyAcrossRefresh(t *testing.T) {
	userID := uuid.New()
	a := line(userID, 1, "S", 1)
	repo := &mockCartItemRepo{Lines: []cartline.CartLine{a}}
	svc := MustNewCartService(WithCartItemRepository(repo))

	_, err := svc.StartSession(context.Background(), userID)
	require.NoError(t, err)

	view, err := svc.SelectAll(userID, true)
	require.NoError(t, err)
	assert.Len(t, view.Selected, 1)

	// A line added after select-all joins the selection on the next refresh.
	b := line(userID, 2, "S", 1)
	repo.setLines([]cartline.CartLine{a, b})

	view, err = svc.Refresh(context.Background(), userID)

	require.NoError(t, err)
	assert.ElementsMatch(t, []cartline.Key{a.Key(), b.Key()}, view.Selected)
}

func TestToggleSelection_AbsentKeyIsNoop(t *testing.T) {
	userID := uuid.New()
	repo := &mockCartItemRepo{Lines: []cartline.CartLine{line(userID, 1, "S", 1)}}
	svc := MustNewCartService(WithCartItemRepository(repo))

	_, err := svc.StartSession(context.Background(), userID)
	require.NoError(t, err)

	view, err := svc.ToggleSelection(userID, cartline.Key{ProductID: 99, Size: "XL"})

	require.NoError(t, err)
	assert.Empty(t, view.Selected)
}

func TestToggleSelection_DeselectEndsSelectAll(t *testing.T) {
	userID := uuid.New()
	a := line(userID, 1, "S", 1)
	b := line(userID, 2, "S", 1)
	repo := &mockCartItemRepo{Lines: []cartline.CartLine{a, b}}
	svc := MustNewCartService(WithCartItemRepository(repo))

	_, err := svc.StartSession(context.Background(), userID)
	require.NoError(t, err)

	_, err = svc.SelectAll(userID, true)
	require.NoError(t, err)

	_, err = svc.ToggleSelection(userID, a.Key())
	require.NoError(t, err)

	// With select-all off, a line added later stays unselected.
	c := line(userID, 3, "S", 1)
	repo.setLines([]cartline.CartLine{a, b, c})

	view, err := svc.Refresh(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, []cartline.Key{b.Key()}, view.Selected)
}

func TestRefresh_FailureClearsCart(t *testing.T) {
	userID := uuid.New()
	repo := &mockCartItemRepo{Lines: []cartline.CartLine{line(userID, 1, "S", 1)}}
	svc := MustNewCartService(WithCartItemRepository(repo))

	_, err := svc.StartSession(context.Background(), userID)
	require.NoError(t, err)

	repo.ListErr = errors.New("connection refused")

	_, err = svc.Refresh(context.Background(), userID)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	view, err := svc.State(userID)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.Empty(t, view.Selected)
}

func TestMutationFailure_ClearsCart(t *testing.T) {
	userID := uuid.New()
	repo := &mockCartItemRepo{Lines: []cartline.CartLine{line(userID, 1, "S", 1)}}
	svc := MustNewCartService(WithCartItemRepository(repo))

	_, err := svc.StartSession(context.Background(), userID)
	require.NoError(t, err)

	repo.UpsertErr = errors.New("connection refused")

	_, err = svc.AddOrIncrement(context.Background(), userID, 2, "M", 1)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	view, err := svc.State(userID)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

func TestRefresh_StaleResponseDiscarded(t *testing.T) {
	userID := uuid.New()
	old := line(userID, 1, "S", 1)
	repo := &mockCartItemRepo{Lines: []cartline.CartLine{old}}
	svc := MustNewCartService(WithCartItemRepository(repo))

	_, err := svc.StartSession(context.Background(), userID)
	require.NoError(t, err)

	// First refresh stalls inside the store call.
	gate := make(chan struct{})
	repo.mu.Lock()
	repo.ListGate = gate
	repo.mu.Unlock()

	type result struct {
		view *CartView
		err  error
	}
	slowDone := make(chan result, 1)
	go func() {
		v, e := svc.Refresh(context.Background(), userID)
		slowDone <- result{v, e}
	}()

	require.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()

		return repo.ListCalls == 2
	}, time.Second, time.Millisecond)

	// A newer refresh completes while the first is still in flight.
	fresh := line(userID, 2, "M", 5)
	repo.mu.Lock()
	repo.ListGate = nil
	repo.Lines = []cartline.CartLine{fresh}
	repo.mu.Unlock()

	view, err := svc.Refresh(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, fresh.Key(), view.Lines[0].Key())

	close(gate)
	res := <-slowDone

	// The stale result must not overwrite the newer one.
	require.NoError(t, res.err)
	require.Len(t, res.view.Lines, 1)
	assert.Equal(t, fresh.Key(), res.view.Lines[0].Key())

	state, err := svc.State(userID)
	require.NoError(t, err)
	require.Len(t, state.Lines, 1)
	assert.Equal(t, fresh.Key(), state.Lines[0].Key())
}

func TestEndSession_DropsState(t *testing.T) {
	userID := uuid.New()
	repo := &mockCartItemRepo{Lines: []cartline.CartLine{line(userID, 1, "S", 1)}}
	svc := MustNewCartService(WithCartItemRepository(repo))

	_, err := svc.StartSession(context.Background(), userID)
	require.NoError(t, err)

	svc.EndSession(userID)

	_, err = svc.State(userID)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestOnIdentityChanged(t *testing.T) {
	userID := uuid.New()
	repo := &mockCartItemRepo{Lines: []cartline.CartLine{line(userID, 1, "S", 1)}}
	svc := MustNewCartService(WithCartItemRepository(repo))

	err := svc.OnIdentityChanged(context.Background(), &userID)
	require.NoError(t, err)

	view, err := svc.State(userID)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 1)

	err = svc.OnIdentityChanged(context.Background(), nil)
	require.NoError(t, err)

	_, err = svc.State(userID)
	assert.ErrorIs(t, err, ErrNoSession)
}
