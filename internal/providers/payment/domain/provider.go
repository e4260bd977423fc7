package domain

import (
	"context"
	"errors"
)

var (
	ErrProviderNotFound = errors.New("payment_provider_not_found")
	ErrInvalidConfig    = errors.New("invalid_provider_config")
	ErrOrderNotApproved = errors.New("order_not_approved")
)

// Amount is a fixed-point monetary value in minor units.
type Amount struct {
	MinorUnits int64
	Currency   string
}

// Order is the provider-side order opened before the buyer approves
// payment. ApprovalURL is the buyer-facing approval handle.
type Order struct {
	OrderRef    string
	ApprovalURL string
}

// Capture is the result of finalizing payment for an approved order.
// RawDetails is the provider's response body, retained opaquely for
// audit and refunds.
type Capture struct {
	CaptureRef string
	Status     string
	RawDetails []byte
}

// Provider is the narrow adapter the purchase orchestrator consumes.
// Implementations must not hold inventory locks; calls are the
// orchestrator's suspension points.
type Provider interface {
	Name() string
	CreateOrder(ctx context.Context, amount Amount, description string) (*Order, error)
	CaptureOrder(ctx context.Context, orderRef string) (*Capture, error)
}
