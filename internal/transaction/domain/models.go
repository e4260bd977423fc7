package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Status is the lifecycle state of a purchase attempt. PENDING is the only
// non-terminal state; terminal records are never resurrected.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

// StatusPaid is a historical alias for StatusCompleted accepted on input.
const StatusPaid Status = "PAID"

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Transaction is the durable record of one purchase attempt. Unit price,
// display name and total amount are snapshots frozen at creation; they are
// never re-read from the event. Records are never deleted.
type Transaction struct {
	ID                 snowflake.ID   `json:"-" gorm:"primaryKey"`
	PublicID           string         `json:"transaction_id" gorm:"type:text;not null;uniqueIndex"`
	BuyerID            string         `json:"buyer_id" gorm:"type:text;not null;index"`
	EventID            snowflake.ID   `json:"event_id" gorm:"not null;index"`
	TicketTypeCode     string         `json:"ticket_type_code" gorm:"type:text;not null"`
	TicketTypeName     string         `json:"ticket_type_name" gorm:"type:text;not null"`
	Quantity           int64          `json:"quantity" gorm:"not null"`
	UnitPriceMinor     int64          `json:"unit_price_minor" gorm:"not null"`
	AmountMinor        int64          `json:"amount_minor" gorm:"not null"`
	Currency           string         `json:"currency" gorm:"type:text;not null"`
	Provider           string         `json:"provider" gorm:"type:text;not null"`
	ProviderOrderRef   string         `json:"provider_order_ref" gorm:"type:text;not null;index:ix_transactions_order_ref_status"`
	ProviderCaptureRef string         `json:"provider_capture_ref,omitempty" gorm:"type:text"`
	Status             Status         `json:"status" gorm:"type:text;not null;index:ix_transactions_order_ref_status"`
	PaymentDetails     datatypes.JSON `json:"payment_details,omitempty"`
	FailureReason      string         `json:"failure_reason,omitempty" gorm:"type:text"`
	CreatedAt          time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt          time.Time      `json:"updated_at" gorm:"not null"`
}

func (Transaction) TableName() string { return "transactions" }
