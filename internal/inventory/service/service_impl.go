package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gatepass/internal/inventory/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(p Params) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("inventory.service"),
	}
}

func (s *Service) CheckAvailable(ctx context.Context, eventID snowflake.ID, code string, quantity int64) (bool, error) {
	if quantity <= 0 {
		return false, domain.ErrInvalidQuantity
	}

	var available sql.NullInt64
	err := s.db.WithContext(ctx).Raw(
		`SELECT available FROM ticket_types WHERE event_id = ? AND code = ?`,
		eventID,
		code,
	).Scan(&available).Error
	if err != nil {
		return false, err
	}
	if !available.Valid {
		return false, domain.ErrTicketTypeNotFound
	}
	return available.Int64 >= quantity, nil
}

func (s *Service) Decrement(ctx context.Context, db *gorm.DB, eventID snowflake.ID, code string, quantity int64) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if db == nil {
		db = s.db
	}

	result := db.WithContext(ctx).Exec(
		`UPDATE ticket_types
		 SET available = available - ?, updated_at = ?
		 WHERE event_id = ? AND code = ? AND available >= ?`,
		quantity,
		time.Now().UTC(),
		eventID,
		code,
		quantity,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// The condition failed: distinguish a missing ticket type from
	// insufficient stock.
	var count int64
	if err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM ticket_types WHERE event_id = ? AND code = ?`,
		eventID,
		code,
	).Scan(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrTicketTypeNotFound
	}

	s.log.Info("conditional decrement rejected",
		zap.String("event_id", eventID.String()),
		zap.String("ticket_type", code),
		zap.Int64("quantity", quantity),
	)
	return domain.ErrInsufficient
}
