package domain

import (
	"context"
	"errors"
	"time"

	txdomain "github.com/smallbiznis/gatepass/internal/transaction/domain"
	"github.com/smallbiznis/gatepass/pkg/db/pagination"
)

var (
	ErrInvalidStatus  = errors.New("invalid_status_filter")
	ErrInvalidEventID = errors.New("invalid_event_id_filter")
	ErrInvalidBuyer   = errors.New("invalid_buyer")
)

type HistoryRequest struct {
	BuyerID string
	EventID string
	Status  string
	Page    pagination.Params
}

type HistoryItem struct {
	TransactionID  string          `json:"transaction_id"`
	EventID        string          `json:"event_id"`
	TicketTypeCode string          `json:"ticket_type_code"`
	TicketTypeName string          `json:"ticket_type_name"`
	Quantity       int64           `json:"quantity"`
	UnitPrice      string          `json:"unit_price"`
	Amount         string          `json:"amount"`
	Currency       string          `json:"currency"`
	Status         txdomain.Status `json:"status"`
	FailureReason  string          `json:"failure_reason,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

type HistoryResponse struct {
	Items    []HistoryItem       `json:"items"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

// Summary aggregates a buyer's settled purchases. Only COMPLETED
// transactions count toward spend and ticket totals.
type Summary struct {
	BuyerID         string `json:"buyer_id"`
	CompletedCount  int64  `json:"completed_count"`
	TotalTickets    int64  `json:"total_tickets"`
	TotalSpentMinor int64  `json:"total_spent_minor"`
	TotalSpent      string `json:"total_spent"`
	DistinctEvents  int64  `json:"distinct_events"`
}

type TicketTypeSales struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Orders         int64  `json:"orders"`
	TicketsSold    int64  `json:"tickets_sold"`
	RevenueMinor   int64  `json:"revenue_minor"`
	Revenue        string `json:"revenue"`
	AvgTicketMinor int64  `json:"avg_ticket_minor"`
}

// BuyerSales is one buyer's settled share of an event.
type BuyerSales struct {
	BuyerID       string `json:"buyer_id"`
	Orders        int64  `json:"orders"`
	TicketsBought int64  `json:"tickets_bought"`
	SpentMinor    int64  `json:"spent_minor"`
	Spent         string `json:"spent"`
}

// EventSales is the per-event revenue breakdown, by ticket type and by
// buyer. Title is empty when the event record no longer exists; sales
// history survives event deletion.
type EventSales struct {
	EventID           string            `json:"event_id"`
	Title             string            `json:"title,omitempty"`
	TotalOrders       int64             `json:"total_orders"`
	TotalTickets      int64             `json:"total_tickets"`
	TotalRevenueMinor int64             `json:"total_revenue_minor"`
	TotalRevenue      string            `json:"total_revenue"`
	TicketTypes       []TicketTypeSales `json:"ticket_types"`
	Buyers            []BuyerSales      `json:"buyers"`
}

// Service is the read-only reporting surface. It never mutates
// transactions or inventory.
type Service interface {
	History(ctx context.Context, req HistoryRequest) (*HistoryResponse, error)
	Summary(ctx context.Context, buyerID string) (*Summary, error)
	EventSales(ctx context.Context, eventID string) (*EventSales, error)
}
