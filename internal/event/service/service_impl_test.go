package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gatepass/internal/clock"
	"github.com/smallbiznis/gatepass/internal/event/domain"
	eventrepo "github.com/smallbiznis/gatepass/internal/event/repository"
	eventservice "github.com/smallbiznis/gatepass/internal/event/service"
	"github.com/smallbiznis/gatepass/internal/outbox"
	"github.com/smallbiznis/gatepass/internal/pricing"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE events (
			id BIGINT PRIMARY KEY,
			slug TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			description TEXT,
			venue TEXT,
			starts_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE ticket_types (
			event_id BIGINT NOT NULL,
			code TEXT NOT NULL,
			name TEXT NOT NULL,
			price_minor BIGINT NOT NULL,
			available BIGINT NOT NULL,
			description TEXT,
			position INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (event_id, code)
		)`,
		`CREATE TABLE outbox_messages (
			id BIGINT PRIMARY KEY,
			topic TEXT NOT NULL,
			message_key TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			published_at DATETIME
		)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return db
}

func newService(t *testing.T, db *gorm.DB) domain.Service {
	t.Helper()

	node, err := snowflake.NewNode(5)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return eventservice.NewService(eventservice.Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		Repo:   eventrepo.Provide(),
		Outbox: outbox.New(node),
	})
}

func TestCreateEventWithStructuredPricing(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	resp, err := svc.Create(ctx, domain.CreateRequest{
		Title: "Summer Fest",
		Venue: "Riverside Park",
		Pricing: map[string]any{
			"pricing": []any{
				map[string]any{"id": "vip", "name": "VIP", "price": 150.00, "available": 10},
				map[string]any{"id": "regular", "name": "Regular", "price": "50.00", "available": 100},
			},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.Slug != "summer-fest" {
		t.Fatalf("expected slug summer-fest, got %s", resp.Slug)
	}
	if len(resp.TicketTypes) != 2 {
		t.Fatalf("expected 2 ticket types, got %d", len(resp.TicketTypes))
	}
	if resp.TicketTypes[0].Code != "vip" || resp.TicketTypes[0].PriceMinor != 15000 {
		t.Fatalf("unexpected first type: %+v", resp.TicketTypes[0])
	}
	if resp.TicketTypes[0].Price != "150.00" {
		t.Fatalf("expected formatted price, got %s", resp.TicketTypes[0].Price)
	}

	var count int64
	if err := db.Raw(
		`SELECT COUNT(1) FROM outbox_messages WHERE topic = ?`, outbox.TopicEventCreated,
	).Scan(&count).Error; err != nil {
		t.Fatalf("count outbox: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 event.created message, got %d", count)
	}
}

func TestCreateEventDuplicateTitleGetsUniqueSlug(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	legacy := map[string]any{
		"regularPrice": 50.00, "regularAvailable": 10,
	}
	first, err := svc.Create(ctx, domain.CreateRequest{Title: "Summer Fest", Pricing: legacy})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.Create(ctx, domain.CreateRequest{Title: "Summer Fest", Pricing: legacy})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if first.Slug == second.Slug {
		t.Fatalf("expected distinct slugs, both %s", first.Slug)
	}
	if second.Slug != "summer-fest-"+second.ID.String() {
		t.Fatalf("expected id-suffixed slug, got %s", second.Slug)
	}
}

func TestCreateEventRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	if _, err := svc.Create(ctx, domain.CreateRequest{Title: "   "}); !errors.Is(err, domain.ErrInvalidTitle) {
		t.Fatalf("expected invalid title, got %v", err)
	}

	_, err := svc.Create(ctx, domain.CreateRequest{
		Title:   "Summer Fest",
		Pricing: map[string]any{"unrelated": true},
	})
	var vErr *pricing.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected pricing validation error, got %v", err)
	}
}

func TestGetEvent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	created, err := svc.Create(ctx, domain.CreateRequest{
		Title:   "Summer Fest",
		Pricing: map[string]any{"vipPrice": 150.00, "vipAvailable": 5},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Get(ctx, created.ID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Summer Fest" || len(got.TicketTypes) != 1 {
		t.Fatalf("unexpected response: %+v", got)
	}

	if _, err := svc.Get(ctx, "999999999999999999"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Get(ctx, "not-an-id"); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected invalid id, got %v", err)
	}
}

func TestReplacePricing(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	created, err := svc.Create(ctx, domain.CreateRequest{
		Title: "Summer Fest",
		Pricing: map[string]any{
			"pricing": []any{
				map[string]any{"id": "vip", "name": "VIP", "price": 150.00, "available": 10},
			},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.ReplacePricing(ctx, created.ID.String(), map[string]any{
		"pricing": []any{
			map[string]any{"id": "early", "name": "Early Bird", "price": 99.99, "available": 50},
			map[string]any{"id": "door", "name": "At the Door", "price": 120.00, "available": 200},
		},
	})
	if err != nil {
		t.Fatalf("replace pricing: %v", err)
	}
	if len(updated.TicketTypes) != 2 {
		t.Fatalf("expected 2 ticket types after replace, got %d", len(updated.TicketTypes))
	}
	if updated.TicketTypes[0].Code != "early" || updated.TicketTypes[0].PriceMinor != 9999 {
		t.Fatalf("unexpected replaced type: %+v", updated.TicketTypes[0])
	}

	// The old set is gone entirely.
	var count int64
	if err := db.Raw(
		`SELECT COUNT(1) FROM ticket_types WHERE event_id = ? AND code = 'vip'`, created.ID,
	).Scan(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected vip type removed, found %d", count)
	}
}
