package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/gatepass/internal/clock"
	"github.com/smallbiznis/gatepass/internal/event/domain"
	"github.com/smallbiznis/gatepass/internal/outbox"
	"github.com/smallbiznis/gatepass/internal/pricing"
	"github.com/smallbiznis/gatepass/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   domain.Repository
	Outbox *outbox.Outbox
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	repo   domain.Repository
	outbox *outbox.Outbox
}

func NewService(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("event.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		repo:   p.Repo,
		outbox: p.Outbox,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}

	entries, err := pricing.Normalize(req.Pricing)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	eventID := s.genID.Generate()

	eventSlug := slug.Make(title)
	existing, err := s.repo.FindBySlug(ctx, s.db, eventSlug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		// Slug collision with another event of the same title.
		eventSlug = eventSlug + "-" + eventID.String()
	}

	event := &domain.Event{
		ID:          eventID,
		Slug:        eventSlug,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Venue:       strings.TrimSpace(req.Venue),
		StartsAt:    req.StartsAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	types := s.toTicketTypes(event.ID, entries)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, event); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrAlreadyExists
			}
			return err
		}
		if err := s.repo.InsertTicketTypes(ctx, tx, types); err != nil {
			return err
		}
		return s.outbox.PublishTx(ctx, tx, outbox.TopicEventCreated, event.ID.String(), map[string]any{
			"event_id": event.ID.String(),
			"slug":     event.Slug,
			"title":    event.Title,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("event created",
		zap.String("event_id", event.ID.String()),
		zap.Int("ticket_types", len(types)),
	)
	return toResponse(event, types), nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	eventID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	event, err := s.repo.FindByID(ctx, s.db, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrNotFound
	}

	types, err := s.repo.ListTicketTypes(ctx, s.db, event.ID)
	if err != nil {
		return nil, err
	}
	return toResponse(event, types), nil
}

func (s *Service) ReplacePricing(ctx context.Context, id string, raw map[string]any) (*domain.Response, error) {
	eventID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	event, err := s.repo.FindByID(ctx, s.db, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrNotFound
	}

	entries, err := pricing.Normalize(raw)
	if err != nil {
		return nil, err
	}

	types := s.toTicketTypes(event.ID, entries)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteTicketTypes(ctx, tx, event.ID); err != nil {
			return err
		}
		if err := s.repo.InsertTicketTypes(ctx, tx, types); err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Exec(
			`UPDATE events SET updated_at = ? WHERE id = ?`, s.clock.Now(), event.ID,
		).Error; err != nil {
			return err
		}
		return s.outbox.PublishTx(ctx, tx, outbox.TopicEventUpdated, event.ID.String(), map[string]any{
			"event_id": event.ID.String(),
			"slug":     event.Slug,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("event pricing replaced",
		zap.String("event_id", event.ID.String()),
		zap.Int("ticket_types", len(types)),
	)
	return toResponse(event, types), nil
}

func (s *Service) toTicketTypes(eventID snowflake.ID, entries []pricing.TicketType) []domain.TicketType {
	now := s.clock.Now()
	types := make([]domain.TicketType, 0, len(entries))
	for i, entry := range entries {
		types = append(types, domain.TicketType{
			EventID:     eventID,
			Code:        entry.ID,
			Name:        entry.Name,
			PriceMinor:  entry.PriceMinor,
			Available:   entry.Available,
			Description: entry.Description,
			Position:    i,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return types
}

func toResponse(event *domain.Event, types []domain.TicketType) *domain.Response {
	views := make([]domain.TicketTypeView, 0, len(types))
	for _, t := range types {
		views = append(views, domain.TicketTypeView{
			Code:        t.Code,
			Name:        t.Name,
			Price:       pricing.FormatAmount(t.PriceMinor),
			PriceMinor:  t.PriceMinor,
			Available:   t.Available,
			Description: t.Description,
		})
	}
	return &domain.Response{
		ID:          event.ID,
		Slug:        event.Slug,
		Title:       event.Title,
		Description: event.Description,
		Venue:       event.Venue,
		StartsAt:    event.StartsAt,
		TicketTypes: views,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
