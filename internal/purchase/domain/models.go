package domain

import (
	"github.com/bwmarrin/snowflake"
	txdomain "github.com/smallbiznis/gatepass/internal/transaction/domain"
)

// CreateRequest opens a purchase attempt. ClientPriceMinor is the unit
// price the buyer saw when deciding to buy; it must match the current
// unit price within tolerance before any money moves.
type CreateRequest struct {
	BuyerID          string
	EventID          snowflake.ID
	TicketTypeCode   string
	Quantity         int64
	ClientPriceMinor int64
	Provider         string
}

type CreateResponse struct {
	TransactionID string          `json:"transaction_id"`
	OrderRef      string          `json:"order_ref"`
	ApprovalURL   string          `json:"approval_url"`
	Status        txdomain.Status `json:"status"`
	AmountMinor   int64           `json:"amount_minor"`
	Currency      string          `json:"currency"`
}

// SettleResult is returned by Complete and Cancel. Processed is true when
// the order reference matched no PENDING transaction, meaning the outcome
// was already recorded; callers treat that as success.
type SettleResult struct {
	TransactionID string          `json:"transaction_id,omitempty"`
	Status        txdomain.Status `json:"status,omitempty"`
	CaptureRef    string          `json:"capture_ref,omitempty"`
	Processed     bool            `json:"processed"`
}
