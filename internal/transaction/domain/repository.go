package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("transaction_not_found")

// TerminalUpdate carries the fields attached when a PENDING transaction
// reaches a terminal status.
type TerminalUpdate struct {
	Status         Status
	CaptureRef     string
	PaymentDetails datatypes.JSON
	FailureReason  string
}

type ListFilter struct {
	BuyerID string
	EventID *snowflake.ID
	Status  *Status
	Offset  int
	Limit   int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, txn *Transaction) error

	// FindPendingByOrderRef matches only a transaction still in PENDING,
	// so a duplicate provider callback finds nothing the second time.
	FindPendingByOrderRef(ctx context.Context, db *gorm.DB, orderRef string) (*Transaction, error)

	FindByPublicID(ctx context.Context, db *gorm.DB, publicID, buyerID string) (*Transaction, error)

	// MarkTerminal transitions a PENDING transaction to a terminal status.
	// It reports false when the record was not PENDING anymore; terminal
	// states are append-only and never resurrected.
	MarkTerminal(ctx context.Context, db *gorm.DB, id snowflake.ID, update TerminalUpdate) (bool, error)

	ListByBuyer(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Transaction, int64, error)
}
