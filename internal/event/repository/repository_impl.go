package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gatepass/internal/event/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, event *domain.Event) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO events (
			id, slug, title, description, venue, starts_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Slug,
		event.Title,
		event.Description,
		event.Venue,
		event.StartsAt,
		event.CreatedAt,
		event.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Event, error) {
	var item domain.Event
	err := db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Event, error) {
	var item domain.Event
	err := db.WithContext(ctx).Where("slug = ?", slug).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) InsertTicketTypes(ctx context.Context, db *gorm.DB, types []domain.TicketType) error {
	for i := range types {
		if err := db.WithContext(ctx).Exec(
			`INSERT INTO ticket_types (
				event_id, code, name, price_minor, available, description, position, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			types[i].EventID,
			types[i].Code,
			types[i].Name,
			types[i].PriceMinor,
			types[i].Available,
			types[i].Description,
			types[i].Position,
			types[i].CreatedAt,
			types[i].UpdatedAt,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) DeleteTicketTypes(ctx context.Context, db *gorm.DB, eventID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM ticket_types WHERE event_id = ?`, eventID,
	).Error
}

func (r *repo) ListTicketTypes(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]domain.TicketType, error) {
	var items []domain.TicketType
	err := db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("position asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindTicketType(ctx context.Context, db *gorm.DB, eventID snowflake.ID, code string) (*domain.TicketType, error) {
	var item domain.TicketType
	err := db.WithContext(ctx).
		Where("event_id = ? AND code = ?", eventID, code).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}
