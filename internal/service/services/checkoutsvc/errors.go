package checkoutsvc

import "errors"

var (
	// ErrEmptySelection means checkout was attempted with nothing selected.
	// No writes are performed.
	ErrEmptySelection = errors.New("no cart lines selected for checkout")

	// ErrCheckoutInFlight means a placement for this identity is already
	// running. Duplicate submissions are rejected, not queued.
	ErrCheckoutInFlight = errors.New("checkout already in flight for identity")

	// ErrOrderCreateFailed means step 1 failed. Nothing was written; a retry
	// starts a brand-new placement.
	ErrOrderCreateFailed = errors.New("failed to create order")

	// ErrOrderLinesFailed means step 2 failed after the order row was
	// created. The orphaned order is reported, not rolled back.
	ErrOrderLinesFailed = errors.New("failed to insert order lines")
)
