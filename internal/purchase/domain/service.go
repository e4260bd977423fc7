package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidRequest = errors.New("invalid_purchase_request")

	// ErrPriceMismatch means the price the buyer saw no longer matches the
	// current unit price beyond the accepted rounding tolerance.
	ErrPriceMismatch = errors.New("price_mismatch")

	// ErrProvider wraps failures talking to the payment provider.
	ErrProvider = errors.New("payment_provider_error")

	// ErrConsistency marks a settlement whose referenced event or ticket
	// type disappeared between creation and completion.
	ErrConsistency = errors.New("inconsistent_purchase_state")
)

type Service interface {
	// Create validates the request, opens a provider order and persists a
	// PENDING transaction. Nothing is persisted when the provider call
	// fails.
	Create(ctx context.Context, req CreateRequest) (*CreateResponse, error)

	// Complete settles the PENDING transaction for a provider order
	// reference: capture first, then decrement inventory and mark
	// COMPLETED atomically. Any failure downgrades the record to FAILED.
	// A reference with no PENDING match is acknowledged as processed.
	Complete(ctx context.Context, orderRef string) (*SettleResult, error)

	// Cancel abandons a PENDING transaction without touching inventory.
	Cancel(ctx context.Context, orderRef string) (*SettleResult, error)
}
