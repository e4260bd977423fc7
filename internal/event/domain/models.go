package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Event struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	Slug        string       `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	Title       string       `json:"title" gorm:"type:text;not null"`
	Description string       `json:"description" gorm:"type:text"`
	Venue       string       `json:"venue" gorm:"type:text"`
	StartsAt    *time.Time   `json:"starts_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null"`
}

func (Event) TableName() string { return "events" }

// TicketType is one priced, quantity-limited purchasable option embedded
// in an event's pricing set. Code is stable across pricing updates and
// unique within the event.
type TicketType struct {
	EventID     snowflake.ID `json:"event_id" gorm:"primaryKey"`
	Code        string       `json:"code" gorm:"primaryKey;type:text"`
	Name        string       `json:"name" gorm:"type:text;not null"`
	PriceMinor  int64        `json:"price_minor" gorm:"not null"`
	Available   int64        `json:"available" gorm:"not null"`
	Description string       `json:"description" gorm:"type:text"`
	Position    int          `json:"position" gorm:"not null;default:0"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null"`
}

func (TicketType) TableName() string { return "ticket_types" }
