package cartsvc

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/evoshop/storefront/internal/dal/interfaces/icartitemrepo"
	"github.com/evoshop/storefront/internal/service/models/cartline"
	"github.com/google/uuid"
)

// CartService keeps a client-authoritative view of each signed-in user's
// cart synchronized with the remote store. Every mutation writes through to
// the store and then re-fetches the full collection, reconciling the
// checkout selection against whatever came back.
type CartService struct {
	cartRepo icartitemrepo.ICartItemRepository

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

// CartView is the render-ready snapshot returned by every cart operation.
type CartView struct {
	Lines    []cartline.CartLine `json:"lines"`
	Selected []cartline.Key      `json:"selected"`
}

// option is a function that configures the CartService.
type option func(*CartService)

// MustNewCartService creates a new CartService.
func MustNewCartService(opts ...option) *CartService {
	s := &CartService{
		sessions: make(map[uuid.UUID]*session),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithCartItemRepository sets the cart item repository for the CartService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCartItemRepository(repo icartitemrepo.ICartItemRepository) option {
	return func(s *CartService) {
		s.cartRepo = repo
	}
}

// OnIdentityChanged is the auth collaborator callback. A non-nil identity
// opens (or re-syncs) that identity's session; nil tears down all sessions,
// which happens when the auth provider invalidates the whole client context.
func (s *CartService) OnIdentityChanged(ctx context.Context, identity *uuid.UUID) error {
	if identity == nil {
		s.mu.Lock()
		s.sessions = make(map[uuid.UUID]*session)
		s.mu.Unlock()

		return nil
	}

	_, err := s.StartSession(ctx, *identity)

	return err
}

// StartSession opens a session for the identity and loads its cart. Calling
// it for an identity that already has a session just re-syncs the cart.
func (s *CartService) StartSession(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = newSession()
		s.sessions[userID] = sess
	}
	s.mu.Unlock()

	return s.doRefresh(ctx, sess, userID)
}

// EndSession tears down the identity's session, dropping the collection and
// selection. Invoked on sign-out.
func (s *CartService) EndSession(userID uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
}

func (s *CartService) session(userID uuid.UUID) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNoSession
	}

	return sess, nil
}

// Refresh re-fetches the identity's cart from the store, replaces the local
// collection and reconciles the selection subset.
func (s *CartService) Refresh(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	return s.doRefresh(ctx, sess, userID)
}

// doRefresh issues a numbered refresh. If a newer refresh was applied while
// this one was in flight, its result is discarded: last-applied wins by
// issue order, so a slow response can never overwrite fresher state.
func (s *CartService) doRefresh(ctx context.Context, sess *session, userID uuid.UUID) (*CartView, error) {
	gen := sess.refreshGen.Add(1)

	lines, err := s.cartRepo.ListByUser(ctx, userID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err != nil {
		// Fail-safe empty state: never keep showing a cart the store
		// could not confirm.
		sess.clearLocked()
		if gen > sess.appliedGen {
			sess.appliedGen = gen
		}

		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if gen <= sess.appliedGen {
		slog.Debug("Discarding stale cart refresh", "user_id", userID, "generation", gen)

		return sess.viewLocked(), nil
	}

	sess.appliedGen = gen
	sess.lines = lines
	sess.reconcileLocked()

	return sess.viewLocked(), nil
}

// AddOrIncrement adds delta to the line keyed by (product, size), creating
// the line when absent. The store-side upsert makes concurrent duplicate
// adds converge on a single row.
func (s *CartService) AddOrIncrement(
	ctx context.Context,
	userID uuid.UUID,
	productID int64,
	size string,
	delta int,
) (*CartView, error) {
	if delta < 1 {
		return nil, ErrInvalidQuantity
	}

	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	sess.ops.Lock()
	defer sess.ops.Unlock()

	if err := s.cartRepo.Upsert(ctx, userID, productID, size, delta); err != nil {
		return nil, s.failMutation(sess, "upsert cart item", err)
	}

	return s.doRefresh(ctx, sess, userID)
}

// SetQuantity sets the quantity of exactly one line. A non-positive quantity
// removes the line instead.
func (s *CartService) SetQuantity(
	ctx context.Context,
	userID uuid.UUID,
	productID int64,
	size string,
	quantity int,
) (*CartView, error) {
	if quantity <= 0 {
		return s.Remove(ctx, userID, productID, size)
	}

	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	sess.ops.Lock()
	defer sess.ops.Unlock()

	if err := s.cartRepo.UpdateQuantity(ctx, userID, productID, size, quantity); err != nil {
		return nil, s.failMutation(sess, "update cart item quantity", err)
	}

	return s.doRefresh(ctx, sess, userID)
}

// Remove deletes exactly one line by its composite key.
func (s *CartService) Remove(
	ctx context.Context,
	userID uuid.UUID,
	productID int64,
	size string,
) (*CartView, error) {
	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	sess.ops.Lock()
	defer sess.ops.Unlock()

	if err := s.cartRepo.Delete(ctx, userID, productID, size); err != nil {
		return nil, s.failMutation(sess, "delete cart item", err)
	}

	return s.doRefresh(ctx, sess, userID)
}

// ToggleSelection flips checkout membership of one line. Toggling a key that
// is not in the collection is a no-op. Turning any line off ends a standing
// select-all.
func (s *CartService) ToggleSelection(userID uuid.UUID, key cartline.Key) (*CartView, error) {
	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	present := false
	for _, l := range sess.lines {
		if l.Key() == key {
			present = true

			break
		}
	}
	if !present {
		return sess.viewLocked(), nil
	}

	if _, selected := sess.selected[key]; selected {
		delete(sess.selected, key)
		sess.selectAll = false
	} else {
		sess.selected[key] = struct{}{}
	}

	return sess.viewLocked(), nil
}

// SelectAll selects every line (flag true) or clears the selection (flag
// false). The flag is remembered so select-all survives refreshes that
// change membership.
func (s *CartService) SelectAll(userID uuid.UUID, flag bool) (*CartView, error) {
	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.selectAll = flag
	sess.selected = make(map[cartline.Key]struct{}, len(sess.lines))
	if flag {
		for _, l := range sess.lines {
			sess.selected[l.Key()] = struct{}{}
		}
	}

	return sess.viewLocked(), nil
}

// State returns the current snapshot without touching the store.
func (s *CartService) State(userID uuid.UUID) (*CartView, error) {
	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	return sess.viewLocked(), nil
}

// Selection returns the lines currently marked for checkout, in collection
// order.
func (s *CartService) Selection(userID uuid.UUID) ([]cartline.CartLine, error) {
	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	return sess.selectionLocked(), nil
}

// failMutation applies the fail-safe empty state after a store write failed
// and wraps the cause.
func (s *CartService) failMutation(sess *session, op string, err error) error {
	sess.mu.Lock()
	sess.clearLocked()
	sess.mu.Unlock()

	return fmt.Errorf("failed to %s: %w: %v", op, ErrStoreUnavailable, err)
}
