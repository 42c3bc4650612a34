package cartsvc

import "errors"

var (
	// ErrStoreUnavailable means a remote store call could not complete. Local
	// cart state is cleared before this is returned, never shown stale.
	ErrStoreUnavailable = errors.New("remote store unavailable")

	// ErrInvalidQuantity means an add was attempted with a non-positive delta.
	ErrInvalidQuantity = errors.New("quantity delta must be at least 1")

	// ErrNoSession means no session is open for the identity. Sessions are
	// opened by the auth collaborator on sign-in.
	ErrNoSession = errors.New("no active session for identity")
)
