package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrInsufficient       = errors.New("insufficient_inventory")
	ErrTicketTypeNotFound = errors.New("ticket_type_not_found")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
)

// Service owns the per-event, per-ticket-type available count.
type Service interface {
	// CheckAvailable reports whether quantity units are currently
	// available. The result is advisory; only Decrement is race-free.
	CheckAvailable(ctx context.Context, eventID snowflake.ID, code string, quantity int64) (bool, error)

	// Decrement atomically subtracts quantity from the available count,
	// failing with ErrInsufficient when not enough units remain. The
	// availability re-read and the subtraction happen in one conditional
	// UPDATE at the store of record; it never partially decrements. The
	// db handle lets callers run it inside their own transaction.
	Decrement(ctx context.Context, db *gorm.DB, eventID snowflake.ID, code string, quantity int64) error
}
