package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound           = errors.New("event_not_found")
	ErrTicketTypeNotFound = errors.New("ticket_type_not_found")
	ErrAlreadyExists      = errors.New("event_already_exists")
	ErrInvalidTitle       = errors.New("invalid_title")
	ErrInvalidID          = errors.New("invalid_event_id")
)

type CreateRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Venue       string         `json:"venue"`
	StartsAt    *time.Time     `json:"starts_at"`
	Pricing     map[string]any `json:"-"`
}

type TicketTypeView struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	PriceMinor  int64  `json:"price_minor"`
	Available   int64  `json:"available"`
	Description string `json:"description,omitempty"`
}

type Response struct {
	ID          snowflake.ID     `json:"id"`
	Slug        string           `json:"slug"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Venue       string           `json:"venue,omitempty"`
	StartsAt    *time.Time       `json:"starts_at,omitempty"`
	TicketTypes []TicketTypeView `json:"ticket_types"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)

	// ReplacePricing is the administrative replace-all pricing update. It
	// is not safe against purchases in flight; callers must drain pending
	// completions for the event before invoking it.
	ReplacePricing(ctx context.Context, id string, raw map[string]any) (*Response, error)
}
