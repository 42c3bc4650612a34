package cartsvc

import (
	"sync"
	"sync/atomic"

	"github.com/evoshop/storefront/internal/service/models/cartline"
)

// session holds the client-authoritative cart state for one identity: the
// line collection, the selection subset and its select-all flag. It lives
// from sign-in to sign-out and is owned exclusively by the CartService.
type session struct {
	// ops serializes remote mutations for this identity so two in-flight
	// writes can never interleave their refresh results.
	ops sync.Mutex

	// refreshGen numbers every issued refresh; appliedGen records the last
	// one whose result was accepted. A refresh that completes after a newer
	// one has already been applied is discarded instead of overwriting
	// fresher state.
	refreshGen atomic.Uint64

	mu         sync.Mutex
	appliedGen uint64
	lines      []cartline.CartLine
	selected   map[cartline.Key]struct{}
	selectAll  bool
}

func newSession() *session {
	return &session{
		selected: make(map[cartline.Key]struct{}),
	}
}

// reconcileLocked recomputes the selection subset after the collection was
// replaced. Lines that vanished drop out silently; a sticky select-all
// extends the selection to lines that appeared. Callers must hold mu.
func (s *session) reconcileLocked() {
	if s.selectAll {
		s.selected = make(map[cartline.Key]struct{}, len(s.lines))
		for _, l := range s.lines {
			s.selected[l.Key()] = struct{}{}
		}

		return
	}

	kept := make(map[cartline.Key]struct{}, len(s.selected))
	for _, l := range s.lines {
		if _, ok := s.selected[l.Key()]; ok {
			kept[l.Key()] = struct{}{}
		}
	}
	s.selected = kept
}

// clearLocked drops the collection and selection. Used as the fail-safe
// empty state after a store failure and on sign-out. Callers must hold mu.
func (s *session) clearLocked() {
	s.lines = nil
	s.selected = make(map[cartline.Key]struct{})
	s.selectAll = false
}

// viewLocked snapshots the state for rendering. Callers must hold mu.
func (s *session) viewLocked() *CartView {
	lines := make([]cartline.CartLine, len(s.lines))
	copy(lines, s.lines)

	selected := make([]cartline.Key, 0, len(s.selected))
	for _, l := range s.lines {
		if _, ok := s.selected[l.Key()]; ok {
			selected = append(selected, l.Key())
		}
	}

	return &CartView{
		Lines:    lines,
		Selected: selected,
	}
}

// selectionLocked returns the selected lines in collection order. Callers
// must hold mu.
func (s *session) selectionLocked() []cartline.CartLine {
	selection := make([]cartline.CartLine, 0, len(s.selected))
	for _, l := range s.lines {
		if _, ok := s.selected[l.Key()]; ok {
			selection = append(selection, l)
		}
	}

	return selection
}
