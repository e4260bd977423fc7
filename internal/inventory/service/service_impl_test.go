package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gatepass/internal/inventory/domain"
	invservice "github.com/smallbiznis/gatepass/internal/inventory/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	// One connection keeps sqlite happy under concurrent writers.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Exec(
		`CREATE TABLE ticket_types (
			event_id BIGINT NOT NULL,
			code TEXT NOT NULL,
			name TEXT NOT NULL,
			price_minor BIGINT NOT NULL,
			available BIGINT NOT NULL,
			description TEXT,
			position INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
	).Error)
	return db
}

func seedTicketType(t *testing.T, db *gorm.DB, eventID snowflake.ID, code string, available int64) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, db.Exec(
		`INSERT INTO ticket_types (event_id, code, name, price_minor, available, created_at, updated_at)
		 VALUES (?, ?, ?, 15000, ?, ?, ?)`,
		eventID, code, code, available, now, now,
	).Error)
}

func availableCount(t *testing.T, db *gorm.DB, eventID snowflake.ID, code string) int64 {
	t.Helper()
	var available int64
	require.NoError(t, db.Raw(
		`SELECT available FROM ticket_types WHERE event_id = ? AND code = ?`, eventID, code,
	).Scan(&available).Error)
	return available
}

func TestCheckAvailable(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	svc := invservice.NewService(invservice.Params{DB: db, Log: zap.NewNop()})

	eventID := node.Generate()
	seedTicketType(t, db, eventID, "vip", 3)

	ok, err := svc.CheckAvailable(ctx, eventID, "vip", 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CheckAvailable(ctx, eventID, "vip", 4)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.CheckAvailable(ctx, eventID, "platinum", 1)
	assert.ErrorIs(t, err, domain.ErrTicketTypeNotFound)

	_, err = svc.CheckAvailable(ctx, eventID, "vip", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestDecrement(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	svc := invservice.NewService(invservice.Params{DB: db, Log: zap.NewNop()})

	eventID := node.Generate()
	seedTicketType(t, db, eventID, "vip", 5)

	require.NoError(t, svc.Decrement(ctx, nil, eventID, "vip", 2))
	assert.Equal(t, int64(3), availableCount(t, db, eventID, "vip"))

	// Asking for more than remains changes nothing.
	err = svc.Decrement(ctx, nil, eventID, "vip", 4)
	assert.ErrorIs(t, err, domain.ErrInsufficient)
	assert.Equal(t, int64(3), availableCount(t, db, eventID, "vip"))

	err = svc.Decrement(ctx, nil, eventID, "platinum", 1)
	assert.ErrorIs(t, err, domain.ErrTicketTypeNotFound)

	err = svc.Decrement(ctx, nil, eventID, "vip", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestDecrementNeverOversells(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	svc := invservice.NewService(invservice.Params{DB: db, Log: zap.NewNop()})

	eventID := node.Generate()
	const initial = 5
	const attempts = 20
	seedTicketType(t, db, eventID, "vip", initial)

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Decrement(ctx, nil, eventID, "vip", 1)
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficient)
		}
	}

	assert.Equal(t, initial, succeeded)
	assert.Equal(t, int64(0), availableCount(t, db, eventID, "vip"))
}
