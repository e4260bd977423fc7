package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, event *Event) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Event, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Event, error)

	InsertTicketTypes(ctx context.Context, db *gorm.DB, types []TicketType) error
	DeleteTicketTypes(ctx context.Context, db *gorm.DB, eventID snowflake.ID) error
	ListTicketTypes(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]TicketType, error)
	FindTicketType(ctx context.Context, db *gorm.DB, eventID snowflake.ID, code string) (*TicketType, error)
}
