package domain

import (
	"context"
	"errors"
	"io"
)

// ErrReceiptUnavailable means the transaction exists but is not COMPLETED;
// only settled purchases have receipts.
var ErrReceiptUnavailable = errors.New("receipt_unavailable")

type Service interface {
	// Get returns a buyer's transaction by its public identifier. An empty
	// buyerID skips the ownership check.
	Get(ctx context.Context, publicID, buyerID string) (*Transaction, error)

	// Receipt renders a PDF receipt for a COMPLETED transaction.
	Receipt(ctx context.Context, publicID, buyerID string) (io.Reader, error)
}
